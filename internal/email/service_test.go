package email

import (
	"strings"
	"testing"
)

func TestIsConfigured(t *testing.T) {
	if NewService(Config{}).IsConfigured() {
		t.Fatal("empty config should not be configured")
	}
	svc := NewService(Config{Host: "smtp.example.com", Port: "587", From: "noreply@example.com"})
	if !svc.IsConfigured() {
		t.Fatal("complete config should be configured")
	}
}

func TestSendEmailUnconfigured(t *testing.T) {
	if err := NewService(Config{}).SendEmail([]string{"a@b.c"}, "s", "b"); err == nil {
		t.Fatal("expected error when not configured")
	}
}

func TestRenderInquiryTemplate(t *testing.T) {
	html, err := renderTemplate(inquiryEmailTemplate, InquiryData{
		AppName: "EstateFlow",
		Name:    "Jad Khoury",
		Email:   "jad@example.com",
		Phone:   "+961 3 123 456",
		Message: "Is the Batroun villa still available?",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// html/template escapes "+" in text nodes, so the phone shows up as an entity.
	for _, want := range []string{"Jad Khoury", "jad@example.com", "&#43;961 3 123 456", "Batroun villa"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
}

func TestRenderInquiryTemplateEscapes(t *testing.T) {
	html, err := renderTemplate(inquiryEmailTemplate, InquiryData{
		AppName: "EstateFlow",
		Name:    "<img src=x>",
		Message: "<script>alert(1)</script>",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Fatal("message was not escaped")
	}
}

func TestRenderInquiryTemplateOmitsEmptyPhone(t *testing.T) {
	html, err := renderTemplate(inquiryEmailTemplate, InquiryData{AppName: "EstateFlow", Name: "A", Message: "m"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "Phone:") {
		t.Fatal("phone row should be omitted when empty")
	}
}
