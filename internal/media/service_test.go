package media

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
)

func jpegDataURL(size int) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(make([]byte, size))
}

func TestValidateDataURL(t *testing.T) {
	if err := ValidateDataURL(jpegDataURL(1024)); err != nil {
		t.Fatalf("valid jpeg rejected: %v", err)
	}
	if err := ValidateDataURL("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{0x89, 0x50})); err != nil {
		t.Fatalf("valid png rejected: %v", err)
	}
}

func TestValidateDataURLRejectsPlainURL(t *testing.T) {
	if err := ValidateDataURL("https://example.com/x.jpg"); err == nil {
		t.Fatal("plain URL should be rejected")
	}
}

func TestValidateDataURLRejectsType(t *testing.T) {
	svg := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte("<svg/>"))
	err := ValidateDataURL(svg)
	if err == nil || !strings.Contains(err.Error(), "unsupported image type") {
		t.Fatalf("err = %v, want unsupported type", err)
	}
}

func TestValidateDataURLRejectsOversize(t *testing.T) {
	err := ValidateDataURL(jpegDataURL(MaxImageBytes + 1))
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("err = %v, want size error", err)
	}
}

func TestValidateDataURLRejectsBadBase64(t *testing.T) {
	if err := ValidateDataURL("data:image/jpeg;base64,!!not-base64!!"); err == nil {
		t.Fatal("bad base64 should be rejected")
	}
}

func TestStoreWithoutObjectStorage(t *testing.T) {
	svc, err := New("", "", "", "", false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	url := jpegDataURL(64)
	ref, err := svc.Store(context.Background(), url)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if ref != url {
		t.Fatalf("ref = %q, want data URL passed through", ref)
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	svc, err := New("", "", "", "", false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := svc.Store(context.Background(), "not-an-image"); err == nil {
		t.Fatal("invalid image should be rejected")
	}
}
