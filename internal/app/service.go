package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"estateflow/api/internal/auth"
	"estateflow/api/internal/authpw"
	"estateflow/api/internal/config"
	"estateflow/api/internal/email"
	"estateflow/api/internal/export"
	"estateflow/api/internal/media"
	"estateflow/api/internal/query"
	"estateflow/api/internal/revisions"
	"estateflow/api/internal/search"
	"estateflow/api/internal/store"
	synchub "estateflow/api/internal/sync"
	"estateflow/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	Email        string
	DisplayName  string
	Admin        bool
	JTI          string
	ExpiresAt    time.Time
}

type ListingInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Location         string   `json:"location"`
	Type             string   `json:"type"`
	Size             float64  `json:"size"`
	Bedrooms         int      `json:"bedrooms"`
	Bathrooms        int      `json:"bathrooms"`
	AcquisitionPrice float64  `json:"acquisitionPrice"`
	SellingPrice     float64  `json:"sellingPrice"`
	Status           string   `json:"status"`
	IsHotDeal        bool     `json:"isHotDeal"`
	Images           []string `json:"images"`
}

type TeamMemberInput struct {
	Name        string `json:"name"`
	Position    string `json:"position"`
	Description string `json:"description"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Portfolio   string `json:"portfolio"`
	ProofOfWork string `json:"proofOfWork"`
	Photo       string `json:"photo"`
}

type MessageInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type FeedbackInput struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Content string `json:"content"`
	Image   string `json:"image"`
	Rating  int    `json:"rating"`
}

type ListingFilterInput struct {
	Query       string
	Status      string
	Type        string
	Location    string
	PriceRange  string
	MinBedrooms int
	MinSize     float64
	MaxSize     float64
	HotDealOnly bool
}

var allowedStatuses = map[string]struct{}{
	store.StatusAcquired: {},
	store.StatusForSale:  {},
	store.StatusSold:     {},
	store.StatusForRent:  {},
}

type dataStore interface {
	ListListings(context.Context) ([]store.Listing, error)
	GetListing(context.Context, string) (store.Listing, error)
	InsertListing(context.Context, store.Listing) error
	UpdateListing(context.Context, store.Listing) error
	UpdateListingStatus(context.Context, string, string) error
	DeleteListing(context.Context, string) error
	ListTeamMembers(context.Context) ([]store.TeamMember, error)
	GetTeamMember(context.Context, string) (store.TeamMember, error)
	InsertTeamMember(context.Context, store.TeamMember) error
	UpdateTeamMember(context.Context, store.TeamMember) error
	DeleteTeamMember(context.Context, string) error
	ListMessages(context.Context) ([]store.Message, error)
	GetMessage(context.Context, string) (store.Message, error)
	InsertMessage(context.Context, store.Message) error
	MarkMessageRead(context.Context, string) (bool, error)
	DeleteMessage(context.Context, string) error
	ListFeedback(context.Context, bool) ([]store.Feedback, error)
	InsertFeedback(context.Context, store.Feedback) error
	DeleteFeedback(context.Context, string) error
	GetContentDocument(context.Context, string) (store.ContentDocument, error)
	SetContentDocument(context.Context, string, []byte) error
	GetAdminByEmail(context.Context, string) (store.AdminUser, error)
	GetAdminByID(context.Context, string) (store.AdminUser, error)
	CreateAdmin(context.Context, store.AdminUser) error
	CountAdmins(context.Context) (int, error)
	Ping(context.Context) error
}

type sessionStore interface {
	SaveRefreshSession(context.Context, string, store.AdminUser, time.Time) error
	LookupRefreshSession(context.Context, string) (store.AdminUser, error)
	RevokeRefreshSession(context.Context, string) error
	RevokeAccessToken(context.Context, string, time.Time) error
	IsAccessTokenRevoked(context.Context, string) (bool, error)
}

type searchService interface {
	Search(q search.Query) ([]search.Result, int, error)
	IndexListing(record search.ListingRecord)
	DeleteListing(id string)
	Healthy() bool
}

type imageStore interface {
	Store(ctx context.Context, dataURL string) (string, error)
	Remove(ctx context.Context, ref string)
}

type revisionStore interface {
	Commit(section string, data json.RawMessage, author, message string) (revisions.Revision, error)
	History(section string, limit int) ([]revisions.Revision, error)
	GetByHash(section, hash string) (json.RawMessage, error)
}

type mailer interface {
	IsConfigured() bool
	SendInquiryNotification(to []string, data email.InquiryData) error
}

type brochureRenderer interface {
	Brochure(ctx context.Context, listingID string) (*export.Result, error)
}

type Service struct {
	cfg       config.Config
	store     dataStore
	sessions  sessionStore
	gate      *auth.Gate
	passwords *authpw.Service
	hub       *synchub.Hub
	search    searchService
	media     imageStore
	revs      revisionStore
	mailer    mailer
	export    brochureRenderer
}

func New(
	cfg config.Config,
	dataStore *store.PostgresStore,
	sessions sessionStore,
	hub *synchub.Hub,
	searchSvc *search.Service,
	mediaSvc *media.Service,
	revSvc *revisions.Service,
	exportSvc *export.Service,
	mailSvc *email.Service,
) *Service {
	return &Service{
		cfg:       cfg,
		store:     dataStore,
		sessions:  sessions,
		gate:      auth.NewGate(cfg.AdminEmails),
		passwords: authpw.NewService(dataStore),
		hub:       hub,
		search:    searchSvc,
		media:     mediaSvc,
		revs:      revSvc,
		mailer:    mailSvc,
		export:    exportSvc,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Bootstrap seeds the first allow-listed admin account so the back
// office is reachable on a fresh database.
func (s *Service) Bootstrap(ctx context.Context) error {
	count, err := s.store.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 || len(s.cfg.AdminEmails) == 0 {
		return nil
	}

	hash, err := authpw.HashPassword(s.cfg.AdminBootstrapPassword)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	admin := store.AdminUser{
		ID:           util.NewID("adm"),
		Email:        strings.ToLower(strings.TrimSpace(s.cfg.AdminEmails[0])),
		DisplayName:  "Administrator",
		PasswordHash: hash,
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		return err
	}
	log.Printf("bootstrap: seeded admin account %s", admin.Email)
	return nil
}

// Auth

func (s *Service) Login(ctx context.Context, emailAddr, password string) (Session, error) {
	user, err := s.passwords.SignIn(ctx, emailAddr, password)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

// LoginFederated admits an externally verified identity. The caller
// has already validated the provider assertion; all that is decided
// here is whether the email is on the allow-list. Denials are generic
// and never echo the list.
func (s *Service) LoginFederated(ctx context.Context, emailAddr, displayName string) (Session, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" {
		return Session{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "email is required", nil)
	}
	if !s.gate.IsAdmin(emailAddr) {
		return Session{}, domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Only administrators can access this platform", nil)
	}

	user, err := s.store.GetAdminByEmail(ctx, emailAddr)
	if errors.Is(err, store.ErrNotFound) {
		user = store.AdminUser{
			ID:          util.NewID("adm"),
			Email:       emailAddr,
			DisplayName: strings.TrimSpace(displayName),
		}
		if user.DisplayName == "" {
			user.DisplayName = emailAddr
		}
		if err := s.store.CreateAdmin(ctx, user); err != nil {
			return Session{}, err
		}
	} else if err != nil {
		return Session{}, err
	}

	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.AdminUser) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.TokenSecret), auth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Name:  user.DisplayName,
		Admin: s.gate.IsAdmin(user.Email),
		JTI:   jti,
		Exp:   expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		Admin:        s.gate.IsAdmin(user.Email),
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.TokenSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.sessions.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	return Session{
		Token:       token,
		UserID:      claims.Sub,
		Email:       claims.Email,
		DisplayName: claims.Name,
		// The allow-list is re-evaluated per request, not trusted from
		// the token, so a redeploy that drops an email takes effect on
		// the next call.
		Admin:     s.gate.IsAdmin(claims.Email),
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.sessions.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

// Listings

var listingMandatory = []struct {
	name    string
	missing func(ListingInput) bool
}{
	{"title", func(in ListingInput) bool { return strings.TrimSpace(in.Title) == "" }},
	{"description", func(in ListingInput) bool { return strings.TrimSpace(in.Description) == "" }},
	{"location", func(in ListingInput) bool { return strings.TrimSpace(in.Location) == "" }},
	{"type", func(in ListingInput) bool { return strings.TrimSpace(in.Type) == "" }},
	{"size", func(in ListingInput) bool { return in.Size <= 0 }},
	{"bedrooms", func(in ListingInput) bool { return in.Bedrooms <= 0 }},
	{"bathrooms", func(in ListingInput) bool { return in.Bathrooms <= 0 }},
	{"acquisitionPrice", func(in ListingInput) bool { return in.AcquisitionPrice <= 0 }},
	{"sellingPrice", func(in ListingInput) bool { return in.SellingPrice <= 0 }},
}

func validateListing(input ListingInput, requireImages bool) error {
	missing := make([]string, 0)
	for _, field := range listingMandatory {
		if field.missing(input) {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return domainError(http.StatusBadRequest, "VALIDATION_ERROR",
			"Please fill in all mandatory fields: "+strings.Join(missing, ", "),
			map[string]any{"fields": missing})
	}
	if requireImages && len(input.Images) == 0 {
		return domainError(http.StatusBadRequest, "VALIDATION_ERROR",
			"Please fill in all mandatory fields: images",
			map[string]any{"fields": []string{"images"}})
	}
	if input.Status != "" {
		if _, ok := allowedStatuses[input.Status]; !ok {
			return domainError(http.StatusBadRequest, "VALIDATION_ERROR", "invalid status", nil)
		}
	}
	return nil
}

// computeDerived recalculates profit and roi from the prices. Callers
// never get to supply these; the server is the only source.
func computeDerived(listing *store.Listing) {
	listing.Profit = listing.SellingPrice - listing.AcquisitionPrice
	if listing.AcquisitionPrice > 0 {
		ratio := (listing.SellingPrice - listing.AcquisitionPrice) / listing.AcquisitionPrice * 100
		listing.ROI = math.Round(ratio*100) / 100
	} else {
		listing.ROI = 0
	}
}

func (s *Service) storeImages(ctx context.Context, refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if !strings.HasPrefix(ref, "data:") {
			// Already-stored reference carried over from an edit.
			out = append(out, ref)
			continue
		}
		stored, err := s.media.Store(ctx, ref)
		if err != nil {
			return nil, domainError(http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		}
		out = append(out, stored)
	}
	return out, nil
}

func (s *Service) CreateListing(ctx context.Context, input ListingInput) (store.Listing, error) {
	if err := validateListing(input, true); err != nil {
		return store.Listing{}, err
	}

	images, err := s.storeImages(ctx, input.Images)
	if err != nil {
		return store.Listing{}, err
	}

	status := input.Status
	if status == "" {
		status = store.StatusAcquired
	}
	now := time.Now()
	listing := store.Listing{
		ID:               util.NewID("lst"),
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		Location:         strings.TrimSpace(input.Location),
		Type:             strings.TrimSpace(input.Type),
		Size:             input.Size,
		Bedrooms:         input.Bedrooms,
		Bathrooms:        input.Bathrooms,
		AcquisitionPrice: input.AcquisitionPrice,
		SellingPrice:     input.SellingPrice,
		Status:           status,
		IsHotDeal:        input.IsHotDeal,
		Images:           images,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	computeDerived(&listing)

	if err := s.store.InsertListing(ctx, listing); err != nil {
		return store.Listing{}, err
	}
	s.search.IndexListing(listingRecord(listing))
	s.hub.Notify(ctx, "listings")
	return listing, nil
}

// UpdateListing is a full replace of the editable fields. Concurrent
// admin edits are last-write-wins, matching the store semantics.
func (s *Service) UpdateListing(ctx context.Context, id string, input ListingInput) (store.Listing, error) {
	if err := validateListing(input, false); err != nil {
		return store.Listing{}, err
	}

	current, err := s.store.GetListing(ctx, id)
	if err != nil {
		return store.Listing{}, err
	}

	images := current.Images
	if input.Images != nil {
		images, err = s.storeImages(ctx, input.Images)
		if err != nil {
			return store.Listing{}, err
		}
	}

	status := input.Status
	if status == "" {
		status = current.Status
	}
	listing := store.Listing{
		ID:               current.ID,
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		Location:         strings.TrimSpace(input.Location),
		Type:             strings.TrimSpace(input.Type),
		Size:             input.Size,
		Bedrooms:         input.Bedrooms,
		Bathrooms:        input.Bathrooms,
		AcquisitionPrice: input.AcquisitionPrice,
		SellingPrice:     input.SellingPrice,
		Status:           status,
		IsHotDeal:        input.IsHotDeal,
		Images:           images,
		CreatedAt:        current.CreatedAt,
		UpdatedAt:        time.Now(),
	}
	computeDerived(&listing)

	if err := s.store.UpdateListing(ctx, listing); err != nil {
		return store.Listing{}, err
	}
	s.search.IndexListing(listingRecord(listing))
	s.hub.Notify(ctx, "listings")
	return listing, nil
}

// DeleteListing removes the row. Stored image blobs are left behind;
// the admin UI has no bulk cleanup and the cost is accepted.
func (s *Service) DeleteListing(ctx context.Context, id string) error {
	if err := s.store.DeleteListing(ctx, id); err != nil {
		return err
	}
	s.search.DeleteListing(id)
	s.hub.Notify(ctx, "listings")
	return nil
}

// ToggleListingVisibility flips a listing between Acquired and
// For Sale. Sold and For Rent listings are returned unchanged with no
// write issued.
func (s *Service) ToggleListingVisibility(ctx context.Context, id string) (store.Listing, error) {
	listing, err := s.store.GetListing(ctx, id)
	if err != nil {
		return store.Listing{}, err
	}

	var next string
	switch listing.Status {
	case store.StatusAcquired:
		next = store.StatusForSale
	case store.StatusForSale:
		next = store.StatusAcquired
	default:
		return listing, nil
	}

	if err := s.store.UpdateListingStatus(ctx, id, next); err != nil {
		return store.Listing{}, err
	}
	listing.Status = next
	s.search.IndexListing(listingRecord(listing))
	s.hub.Notify(ctx, "listings")
	return listing, nil
}

func (s *Service) GetListing(ctx context.Context, id string) (store.Listing, error) {
	return s.store.GetListing(ctx, id)
}

// AdminListings returns the whole inventory, Acquired included.
func (s *Service) AdminListings(ctx context.Context) ([]store.Listing, error) {
	return s.store.ListListings(ctx)
}

// PublicListings returns the public catalogue: everything except
// Acquired stock, filtered by the query engine.
func (s *Service) PublicListings(ctx context.Context, filter ListingFilterInput) ([]store.Listing, query.FacetOptions, error) {
	all, err := s.store.ListListings(ctx)
	if err != nil {
		return nil, query.FacetOptions{}, err
	}

	visible := make([]store.Listing, 0, len(all))
	for _, listing := range all {
		if listing.Status == store.StatusAcquired {
			continue
		}
		if filter.Status != "" && filter.Status != query.Wildcard && listing.Status != filter.Status {
			continue
		}
		visible = append(visible, listing)
	}

	filtered := query.Filter(visible, filter.Query, query.Facets{
		Type:        filter.Type,
		Location:    filter.Location,
		PriceRange:  filter.PriceRange,
		MinBedrooms: filter.MinBedrooms,
		MinSize:     filter.MinSize,
		MaxSize:     filter.MaxSize,
		HotDealOnly: filter.HotDealOnly,
	})
	return filtered, query.Options(visible), nil
}

// Rentals returns For Rent listings only.
func (s *Service) Rentals(ctx context.Context) ([]store.Listing, error) {
	all, err := s.store.ListListings(ctx)
	if err != nil {
		return nil, err
	}
	rentals := make([]store.Listing, 0)
	for _, listing := range all {
		if listing.Status == store.StatusForRent {
			rentals = append(rentals, listing)
		}
	}
	return rentals, nil
}

// ContactURL builds the pre-filled advisor deep link for a listing.
// There is no server-side send path; the client opens the URL.
func (s *Service) ContactURL(listing store.Listing) string {
	if s.cfg.ContactHandle == "" {
		return ""
	}
	text := fmt.Sprintf("Hello, I am interested in %s (ref %s).", listing.Title, strings.ToUpper(listing.ID))
	return "https://wa.me/" + s.cfg.ContactHandle + "?text=" + url.QueryEscape(text)
}

func listingRecord(listing store.Listing) search.ListingRecord {
	return search.ListingRecord{
		ID:          listing.ID,
		Title:       listing.Title,
		Description: listing.Description,
		Location:    listing.Location,
		Type:        listing.Type,
		Status:      listing.Status,
		Price:       listing.SellingPrice,
	}
}

// Team

func validateTeamMember(input TeamMemberInput) error {
	missing := make([]string, 0)
	if strings.TrimSpace(input.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(input.Position) == "" {
		missing = append(missing, "position")
	}
	if strings.TrimSpace(input.Photo) == "" {
		missing = append(missing, "photo")
	}
	if len(missing) > 0 {
		return domainError(http.StatusBadRequest, "VALIDATION_ERROR",
			"Please fill in all mandatory fields: "+strings.Join(missing, ", "),
			map[string]any{"fields": missing})
	}
	return nil
}

func (s *Service) ListTeam(ctx context.Context) ([]store.TeamMember, error) {
	return s.store.ListTeamMembers(ctx)
}

func (s *Service) CreateTeamMember(ctx context.Context, input TeamMemberInput) (store.TeamMember, error) {
	if err := validateTeamMember(input); err != nil {
		return store.TeamMember{}, err
	}
	photo := input.Photo
	if strings.HasPrefix(photo, "data:") {
		stored, err := s.media.Store(ctx, photo)
		if err != nil {
			return store.TeamMember{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		}
		photo = stored
	}

	now := time.Now()
	member := store.TeamMember{
		ID:          util.NewID("tm"),
		Name:        strings.TrimSpace(input.Name),
		Position:    strings.TrimSpace(input.Position),
		Description: strings.TrimSpace(input.Description),
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		Portfolio:   strings.TrimSpace(input.Portfolio),
		ProofOfWork: strings.TrimSpace(input.ProofOfWork),
		Photo:       photo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertTeamMember(ctx, member); err != nil {
		return store.TeamMember{}, err
	}
	s.hub.Notify(ctx, "team")
	return member, nil
}

func (s *Service) UpdateTeamMember(ctx context.Context, id string, input TeamMemberInput) (store.TeamMember, error) {
	if err := validateTeamMember(input); err != nil {
		return store.TeamMember{}, err
	}
	current, err := s.store.GetTeamMember(ctx, id)
	if err != nil {
		return store.TeamMember{}, err
	}
	photo := input.Photo
	if strings.HasPrefix(photo, "data:") {
		stored, err := s.media.Store(ctx, photo)
		if err != nil {
			return store.TeamMember{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		}
		photo = stored
	}

	member := store.TeamMember{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Position:    strings.TrimSpace(input.Position),
		Description: strings.TrimSpace(input.Description),
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		Portfolio:   strings.TrimSpace(input.Portfolio),
		ProofOfWork: strings.TrimSpace(input.ProofOfWork),
		Photo:       photo,
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   time.Now(),
	}
	if err := s.store.UpdateTeamMember(ctx, member); err != nil {
		return store.TeamMember{}, err
	}
	s.hub.Notify(ctx, "team")
	return member, nil
}

func (s *Service) DeleteTeamMember(ctx context.Context, id string) error {
	if err := s.store.DeleteTeamMember(ctx, id); err != nil {
		return err
	}
	s.hub.Notify(ctx, "team")
	return nil
}

// Messages

func (s *Service) SubmitMessage(ctx context.Context, input MessageInput) (store.Message, error) {
	missing := make([]string, 0)
	if strings.TrimSpace(input.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(input.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(input.Message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return store.Message{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR",
			"Please fill in all mandatory fields: "+strings.Join(missing, ", "),
			map[string]any{"fields": missing})
	}

	message := store.Message{
		ID:        util.NewID("msg"),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Body:      strings.TrimSpace(input.Message),
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertMessage(ctx, message); err != nil {
		return store.Message{}, err
	}
	s.hub.Notify(ctx, "messages")

	if s.mailer.IsConfigured() {
		go func(m store.Message) {
			err := s.mailer.SendInquiryNotification(s.cfg.AdminEmails, email.InquiryData{
				Name:    m.Name,
				Email:   m.Email,
				Phone:   m.Phone,
				Message: m.Body,
			})
			if err != nil {
				log.Printf("email: inquiry notification: %v", err)
			}
		}(message)
	}
	return message, nil
}

func (s *Service) ListMessages(ctx context.Context) ([]store.Message, error) {
	return s.store.ListMessages(ctx)
}

// OpenMessage returns the message and flips the read flag exactly
// once. Opening an already-read message issues no write.
func (s *Service) OpenMessage(ctx context.Context, id string) (store.Message, error) {
	message, err := s.store.GetMessage(ctx, id)
	if err != nil {
		return store.Message{}, err
	}
	if !message.Read {
		changed, err := s.store.MarkMessageRead(ctx, id)
		if err != nil {
			return store.Message{}, err
		}
		if changed {
			message.Read = true
			s.hub.Notify(ctx, "messages")
		}
	}
	return message, nil
}

// MarkMessageRead is idempotent; marking twice is not an error.
func (s *Service) MarkMessageRead(ctx context.Context, id string) error {
	if _, err := s.store.GetMessage(ctx, id); err != nil {
		return err
	}
	changed, err := s.store.MarkMessageRead(ctx, id)
	if err != nil {
		return err
	}
	if changed {
		s.hub.Notify(ctx, "messages")
	}
	return nil
}

func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	if err := s.store.DeleteMessage(ctx, id); err != nil {
		return err
	}
	s.hub.Notify(ctx, "messages")
	return nil
}

// Feedback

func (s *Service) SubmitFeedback(ctx context.Context, input FeedbackInput) (store.Feedback, error) {
	missing := make([]string, 0)
	if strings.TrimSpace(input.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(input.Content) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return store.Feedback{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR",
			"Please fill in all mandatory fields: "+strings.Join(missing, ", "),
			map[string]any{"fields": missing})
	}
	if input.Rating < 1 || input.Rating > 5 {
		return store.Feedback{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "rating must be between 1 and 5", nil)
	}

	image := input.Image
	if strings.HasPrefix(image, "data:") {
		stored, err := s.media.Store(ctx, image)
		if err != nil {
			return store.Feedback{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		}
		image = stored
	}

	feedback := store.Feedback{
		ID:      util.NewID("fb"),
		Name:    strings.TrimSpace(input.Name),
		Role:    strings.TrimSpace(input.Role),
		Content: strings.TrimSpace(input.Content),
		Image:   image,
		Rating:  input.Rating,
		// Submissions go live without moderation. Deliberate carry-over
		// from the previous site; revisit if abuse shows up.
		Approved:  true,
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertFeedback(ctx, feedback); err != nil {
		return store.Feedback{}, err
	}
	s.hub.Notify(ctx, "feedback")
	return feedback, nil
}

// PublicFeedback returns approved testimonials, or the built-in
// fallback set when none exist.
func (s *Service) PublicFeedback(ctx context.Context) ([]store.Feedback, error) {
	items, err := s.store.ListFeedback(ctx, true)
	if err != nil {
		log.Printf("feedback: list failed, serving fallback: %v", err)
		return fallbackTestimonials, nil
	}
	if len(items) == 0 {
		return fallbackTestimonials, nil
	}
	return items, nil
}

func (s *Service) AdminFeedback(ctx context.Context) ([]store.Feedback, error) {
	return s.store.ListFeedback(ctx, false)
}

func (s *Service) DeleteFeedback(ctx context.Context, id string) error {
	if err := s.store.DeleteFeedback(ctx, id); err != nil {
		return err
	}
	s.hub.Notify(ctx, "feedback")
	return nil
}

// Content

// GetContent returns the section document or its default shape.
// Absence is never an error.
func (s *Service) GetContent(ctx context.Context, section string) (json.RawMessage, error) {
	if !validContentSection(section) {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "unknown content section", nil)
	}
	doc, err := s.store.GetContentDocument(ctx, section)
	if errors.Is(err, store.ErrNotFound) {
		return defaultContent(section), nil
	}
	if err != nil {
		log.Printf("content: load %s failed, serving default: %v", section, err)
		return defaultContent(section), nil
	}
	return json.RawMessage(doc.Data), nil
}

// SaveContent replaces the whole section document, records a revision
// and notifies subscribers. Saves are never merges.
func (s *Service) SaveContent(ctx context.Context, section string, data json.RawMessage, author string) error {
	if !validContentSection(section) {
		return domainError(http.StatusNotFound, "NOT_FOUND", "unknown content section", nil)
	}
	if !json.Valid(data) {
		return domainError(http.StatusBadRequest, "VALIDATION_ERROR", "content must be a JSON document", nil)
	}
	if err := s.store.SetContentDocument(ctx, section, data); err != nil {
		return err
	}
	if _, err := s.revs.Commit(section, data, author, "Save "+section+" content"); err != nil {
		// The save itself succeeded; a broken revision repo should not
		// block publishing.
		log.Printf("revisions: commit %s: %v", section, err)
	}
	s.hub.Notify(ctx, "content:"+section)
	return nil
}

func (s *Service) ContentRevisions(section string, limit int) ([]revisions.Revision, error) {
	if !validContentSection(section) {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "unknown content section", nil)
	}
	if limit <= 0 {
		limit = 50
	}
	return s.revs.History(section, limit)
}

func (s *Service) ContentRevisionData(section, hash string) (json.RawMessage, error) {
	if !validContentSection(section) {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "unknown content section", nil)
	}
	data, err := s.revs.GetByHash(section, hash)
	if err != nil {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "unknown revision", nil)
	}
	return data, nil
}

// Dashboard

func (s *Service) Dashboard(ctx context.Context) (map[string]any, error) {
	listings, err := s.store.ListListings(ctx)
	if err != nil {
		return nil, err
	}

	var (
		forSale    int
		sold       int
		investment float64
		revenue    float64
		profit     float64
		roiSum     float64
	)
	for _, listing := range listings {
		investment += listing.AcquisitionPrice
		switch listing.Status {
		case store.StatusForSale:
			forSale++
		case store.StatusSold:
			sold++
			revenue += listing.SellingPrice
			profit += listing.Profit
			roiSum += listing.ROI
		}
	}
	avgROI := 0.0
	if sold > 0 {
		avgROI = math.Round(roiSum/float64(sold)*100) / 100
	}

	return map[string]any{
		"totalListings":   len(listings),
		"forSale":         forSale,
		"sold":            sold,
		"totalInvestment": investment,
		"revenue":         revenue,
		"profit":          profit,
		"averageRoi":      avgROI,
	}, nil
}

// Search

func (s *Service) Search(ctx context.Context, text, status string, limit int) (search.Response, error) {
	results, total, err := s.search.Search(search.Query{Text: text, Status: status, Limit: limit})
	if err != nil {
		return search.Response{}, err
	}
	return search.Response{Results: results, Total: total, Query: text}, nil
}

// Brochure renders the listing PDF.
func (s *Service) Brochure(ctx context.Context, id string) (*export.Result, error) {
	return s.export.Brochure(ctx, id)
}

// Streams

// publicTopics are subscribable without a session. The messages inbox
// stream requires an admin session and is gated in the HTTP layer.
func publicTopic(topic string) bool {
	switch topic {
	case "listings", "rentals", "team", "feedback":
		return true
	}
	if section, ok := strings.CutPrefix(topic, "content:"); ok {
		return validContentSection(section)
	}
	return false
}

// SubscribeTopic opens a snapshot subscription for a known topic.
func (s *Service) SubscribeTopic(ctx context.Context, topic string) (*synchub.Subscription, error) {
	switch {
	case topic == "listings":
		return s.hub.Collection(ctx, topic, func(ctx context.Context) (any, error) {
			listings, _, err := s.PublicListings(ctx, ListingFilterInput{})
			return listings, err
		}, []store.Listing{}), nil
	case topic == "rentals":
		return s.hub.Collection(ctx, topic, func(ctx context.Context) (any, error) {
			return s.Rentals(ctx)
		}, []store.Listing{}), nil
	case topic == "team":
		return s.hub.Collection(ctx, topic, func(ctx context.Context) (any, error) {
			return s.store.ListTeamMembers(ctx)
		}, []store.TeamMember{}), nil
	case topic == "feedback":
		return s.hub.Collection(ctx, topic, func(ctx context.Context) (any, error) {
			return s.PublicFeedback(ctx)
		}, []store.Feedback{}), nil
	case topic == "messages":
		return s.hub.Collection(ctx, topic, func(ctx context.Context) (any, error) {
			return s.store.ListMessages(ctx)
		}, []store.Message{}), nil
	case strings.HasPrefix(topic, "content:"):
		section := strings.TrimPrefix(topic, "content:")
		if !validContentSection(section) {
			return nil, domainError(http.StatusNotFound, "NOT_FOUND", "unknown topic", nil)
		}
		return s.hub.Singleton(ctx, topic, func(ctx context.Context) (any, error) {
			doc, err := s.store.GetContentDocument(ctx, section)
			if errors.Is(err, store.ErrNotFound) {
				return nil, synchub.ErrMissing
			}
			if err != nil {
				return nil, err
			}
			return json.RawMessage(doc.Data), nil
		}, defaultContent(section)), nil
	}
	return nil, domainError(http.StatusNotFound, "NOT_FOUND", "unknown topic", nil)
}
