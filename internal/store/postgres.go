package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned for lookups of ids or sections that do not
// exist. Singleton content readers are expected to fall back to their
// defaults on it rather than treat it as a failure.
var ErrNotFound = errors.New("not found")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Listings

const listingColumns = `id, title, description, location, type, size, bedrooms, bathrooms,
	acquisition_price, selling_price, status, is_hot_deal, images, profit, roi,
	created_at, updated_at`

func scanListing(row interface{ Scan(...any) error }) (Listing, error) {
	var listing Listing
	var images []byte
	err := row.Scan(
		&listing.ID, &listing.Title, &listing.Description, &listing.Location,
		&listing.Type, &listing.Size, &listing.Bedrooms, &listing.Bathrooms,
		&listing.AcquisitionPrice, &listing.SellingPrice, &listing.Status,
		&listing.IsHotDeal, &images, &listing.Profit, &listing.ROI,
		&listing.CreatedAt, &listing.UpdatedAt,
	)
	if err != nil {
		return Listing{}, err
	}
	if err := json.Unmarshal(images, &listing.Images); err != nil {
		return Listing{}, fmt.Errorf("decode listing images: %w", err)
	}
	return listing, nil
}

func (s *PostgresStore) ListListings(ctx context.Context) ([]Listing, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var listings []Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

func (s *PostgresStore) GetListing(ctx context.Context, id string) (Listing, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id=$1`, id)
	listing, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Listing{}, ErrNotFound
	}
	if err != nil {
		return Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return listing, nil
}

func (s *PostgresStore) InsertListing(ctx context.Context, listing Listing) error {
	images, err := json.Marshal(listing.Images)
	if err != nil {
		return fmt.Errorf("encode listing images: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO listings (id, title, description, location, type, size, bedrooms, bathrooms,
			acquisition_price, selling_price, status, is_hot_deal, images, profit, roi, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,NOW(),NOW())
	`, listing.ID, listing.Title, listing.Description, listing.Location, listing.Type,
		listing.Size, listing.Bedrooms, listing.Bathrooms, listing.AcquisitionPrice,
		listing.SellingPrice, listing.Status, listing.IsHotDeal, images, listing.Profit, listing.ROI)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// UpdateListing replaces every editable field. Concurrent edits are
// last-write-wins; there is no version column.
func (s *PostgresStore) UpdateListing(ctx context.Context, listing Listing) error {
	images, err := json.Marshal(listing.Images)
	if err != nil {
		return fmt.Errorf("encode listing images: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE listings SET title=$2, description=$3, location=$4, type=$5, size=$6,
			bedrooms=$7, bathrooms=$8, acquisition_price=$9, selling_price=$10,
			status=$11, is_hot_deal=$12, images=$13, profit=$14, roi=$15, updated_at=NOW()
		WHERE id=$1
	`, listing.ID, listing.Title, listing.Description, listing.Location, listing.Type,
		listing.Size, listing.Bedrooms, listing.Bathrooms, listing.AcquisitionPrice,
		listing.SellingPrice, listing.Status, listing.IsHotDeal, images, listing.Profit, listing.ROI)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) UpdateListingStatus(ctx context.Context, id, status string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE listings SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return fmt.Errorf("update listing status: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) DeleteListing(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return requireRow(result)
}

// Team members

func (s *PostgresStore) ListTeamMembers(ctx context.Context) ([]TeamMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, position, description, email, phone, portfolio, proof_of_work, photo, created_at, updated_at
		FROM team_members ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	var members []TeamMember
	for rows.Next() {
		var m TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Position, &m.Description, &m.Email, &m.Phone,
			&m.Portfolio, &m.ProofOfWork, &m.Photo, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *PostgresStore) GetTeamMember(ctx context.Context, id string) (TeamMember, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, position, description, email, phone, portfolio, proof_of_work, photo, created_at, updated_at
		FROM team_members WHERE id=$1
	`, id)
	var m TeamMember
	err := row.Scan(&m.ID, &m.Name, &m.Position, &m.Description, &m.Email, &m.Phone,
		&m.Portfolio, &m.ProofOfWork, &m.Photo, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return TeamMember{}, ErrNotFound
	}
	if err != nil {
		return TeamMember{}, fmt.Errorf("get team member: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) InsertTeamMember(ctx context.Context, m TeamMember) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team_members (id, name, position, description, email, phone, portfolio, proof_of_work, photo, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
	`, m.ID, m.Name, m.Position, m.Description, m.Email, m.Phone, m.Portfolio, m.ProofOfWork, m.Photo)
	if err != nil {
		return fmt.Errorf("insert team member: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateTeamMember(ctx context.Context, m TeamMember) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE team_members SET name=$2, position=$3, description=$4, email=$5, phone=$6,
			portfolio=$7, proof_of_work=$8, photo=$9, updated_at=NOW()
		WHERE id=$1
	`, m.ID, m.Name, m.Position, m.Description, m.Email, m.Phone, m.Portfolio, m.ProofOfWork, m.Photo)
	if err != nil {
		return fmt.Errorf("update team member: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) DeleteTeamMember(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM team_members WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete team member: %w", err)
	}
	return requireRow(result)
}

// Messages

func (s *PostgresStore) ListMessages(ctx context.Context) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, body, read, created_at
		FROM messages ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *PostgresStore) GetMessage(ctx context.Context, id string) (Message, error) {
	var m Message
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, body, read, created_at FROM messages WHERE id=$1
	`, id).Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Body, &m.Read, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	if err != nil {
		return Message{}, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) InsertMessage(ctx context.Context, m Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, name, email, phone, body, read, created_at)
		VALUES ($1,$2,$3,$4,$5,FALSE,NOW())
	`, m.ID, m.Name, m.Email, m.Phone, m.Body)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// MarkMessageRead flips the read flag and reports whether a write
// actually happened, so callers can keep open-marks-read idempotent.
func (s *PostgresStore) MarkMessageRead(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE messages SET read=TRUE WHERE id=$1 AND read=FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("mark message read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark message read: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) DeleteMessage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return requireRow(result)
}

// Feedback

func (s *PostgresStore) ListFeedback(ctx context.Context, approvedOnly bool) ([]Feedback, error) {
	query := `SELECT id, name, role, content, image, rating, approved, created_at FROM feedback`
	if approvedOnly {
		query += ` WHERE approved=TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var entries []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.Name, &f.Role, &f.Content, &f.Image, &f.Rating, &f.Approved, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		entries = append(entries, f)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) InsertFeedback(ctx context.Context, f Feedback) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, name, role, content, image, rating, approved, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
	`, f.ID, f.Name, f.Role, f.Content, f.Image, f.Rating, f.Approved)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteFeedback(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM feedback WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return requireRow(result)
}

// Content documents

func (s *PostgresStore) GetContentDocument(ctx context.Context, section string) (ContentDocument, error) {
	var doc ContentDocument
	err := s.db.QueryRowContext(ctx, `
		SELECT section, data, updated_at FROM content_documents WHERE section=$1
	`, section).Scan(&doc.Section, &doc.Data, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ContentDocument{}, ErrNotFound
	}
	if err != nil {
		return ContentDocument{}, fmt.Errorf("get content document: %w", err)
	}
	return doc, nil
}

// SetContentDocument is a full-document overwrite: fields absent from
// data are gone after the call. Callers must send the complete shape.
func (s *PostgresStore) SetContentDocument(ctx context.Context, section string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_documents (section, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (section) DO UPDATE SET data=EXCLUDED.data, updated_at=NOW()
	`, section, data)
	if err != nil {
		return fmt.Errorf("set content document: %w", err)
	}
	return nil
}

// Admin users

func (s *PostgresStore) GetAdminByEmail(ctx context.Context, email string) (AdminUser, error) {
	var user AdminUser
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, created_at, updated_at
		FROM admin_users WHERE LOWER(email)=LOWER($1)
	`, email).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminUser{}, ErrNotFound
	}
	if err != nil {
		return AdminUser{}, fmt.Errorf("get admin by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetAdminByID(ctx context.Context, id string) (AdminUser, error) {
	var user AdminUser
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, created_at, updated_at
		FROM admin_users WHERE id=$1
	`, id).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminUser{}, ErrNotFound
	}
	if err != nil {
		return AdminUser{}, fmt.Errorf("get admin by id: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) CreateAdmin(ctx context.Context, user AdminUser) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_users (id, email, display_name, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
	`, user.ID, user.Email, user.DisplayName, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

// Refresh sessions (Postgres fallback when Redis is not configured)

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash string, user AdminUser, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at
	`, tokenHash, user.ID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (AdminUser, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM refresh_sessions WHERE token_hash=$1 AND expires_at > NOW()
	`, tokenHash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminUser{}, ErrNotFound
	}
	if err != nil {
		return AdminUser{}, fmt.Errorf("lookup refresh session: %w", err)
	}
	return s.GetAdminByID(ctx, userID)
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE token_hash=$1`, tokenHash); err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1,$2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, expiresAt)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti=$1 AND expires_at > NOW())
	`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
