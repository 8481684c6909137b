package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// VisualizationRecord is the upsert-by-session snapshot of a completed
// visualization.
type VisualizationRecord struct {
	SessionID          string
	Mode               string
	EnclosureType      string
	GlassStyle         string
	HardwareFinish     string
	HandleStyle        string
	TrackPreference    string
	ShowerShape        string
	VisualizationImage string
	OriginalImage      string
	Source             string
}

// GenerationEvent is one row in the insert-only generation log.
type GenerationEvent struct {
	SessionID       string
	GenerationIndex int
	TemplateID      string
	TemplateVersion string
	InputHash       string
	Mode            string
}

// Lead is a contact-form submission tied to a visualization.
type Lead struct {
	Name               string
	Email              string
	Phone              string
	ZipCode            string
	VisualizationImage string
	OriginalImage      string
	DoorType           string
	Finish             string
	Hardware           string
	ShowerShape        string
	Source             string
	Status             string
	CreatedAt          time.Time
}

// IssueReport is a user-filed problem report against a generated image.
type IssueReport struct {
	SessionID             string
	IssueMessage          string
	VisualizationImageURL string
	Team                  string
}

// Store is the Postgres-backed record store. Each instance owns its pool;
// construct one at startup and share it.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SaveVisualization upserts the latest snapshot for a session. Repeated
// saves from the same session overwrite, never duplicate.
func (s *Store) SaveVisualization(ctx context.Context, rec VisualizationRecord) error {
	if s.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	query := `
		INSERT INTO visualizations (
			session_id, mode, enclosure_type, glass_style, hardware_finish,
			handle_style, track_preference, shower_shape,
			visualization_image_url, original_image_url, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id)
		DO UPDATE SET
			mode = EXCLUDED.mode,
			enclosure_type = EXCLUDED.enclosure_type,
			glass_style = EXCLUDED.glass_style,
			hardware_finish = EXCLUDED.hardware_finish,
			handle_style = EXCLUDED.handle_style,
			track_preference = EXCLUDED.track_preference,
			shower_shape = EXCLUDED.shower_shape,
			visualization_image_url = EXCLUDED.visualization_image_url,
			original_image_url = EXCLUDED.original_image_url,
			updated_at = NOW()
	`

	_, err := s.pool.Exec(ctx, query,
		rec.SessionID, rec.Mode, rec.EnclosureType, rec.GlassStyle, rec.HardwareFinish,
		rec.HandleStyle, rec.TrackPreference, rec.ShowerShape,
		rec.VisualizationImage, rec.OriginalImage, rec.Source,
	)
	if err != nil {
		return fmt.Errorf("save visualization: %w", err)
	}
	return nil
}

// InsertGenerationEvent appends to the generation log.
func (s *Store) InsertGenerationEvent(ctx context.Context, ev GenerationEvent) error {
	if s.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	query := `
		INSERT INTO generation_events (
			session_id, generation_index, template_id, template_version, input_hash, mode
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		ev.SessionID, ev.GenerationIndex, ev.TemplateID, ev.TemplateVersion, ev.InputHash, ev.Mode,
	)
	if err != nil {
		return fmt.Errorf("insert generation event: %w", err)
	}
	return nil
}

// InsertLead stores a contact-form submission and returns the new row id.
func (s *Store) InsertLead(ctx context.Context, lead Lead) (string, error) {
	if s.pool == nil {
		return "", fmt.Errorf("database pool not configured")
	}

	if lead.Source == "" {
		lead.Source = "Visualizer"
	}
	if lead.Status == "" {
		lead.Status = "new"
	}

	query := `
		INSERT INTO leads (
			name, email, phone, zip_code,
			visualization_image_url, original_image_url,
			door_type, finish, hardware, shower_shape, status, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	var id string
	err := s.pool.QueryRow(ctx, query,
		lead.Name, lead.Email, nullable(lead.Phone), lead.ZipCode,
		nullable(lead.VisualizationImage), nullable(lead.OriginalImage),
		nullable(lead.DoorType), nullable(lead.Finish), nullable(lead.Hardware),
		nullable(lead.ShowerShape), lead.Status, lead.Source,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert lead: %w", err)
	}
	return id, nil
}

// LeadsByZipCode lists leads for a service area, newest first.
func (s *Store) LeadsByZipCode(ctx context.Context, zipCode string) ([]Lead, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	query := `
		SELECT name, email, COALESCE(phone, ''), zip_code,
			COALESCE(visualization_image_url, ''), COALESCE(original_image_url, ''),
			COALESCE(door_type, ''), COALESCE(finish, ''), COALESCE(hardware, ''),
			COALESCE(shower_shape, ''), status, source, created_at
		FROM leads
		WHERE zip_code = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, zipCode)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.Name, &lead.Email, &lead.Phone, &lead.ZipCode,
			&lead.VisualizationImage, &lead.OriginalImage,
			&lead.DoorType, &lead.Finish, &lead.Hardware,
			&lead.ShowerShape, &lead.Status, &lead.Source, &lead.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// UpdateLeadStatus moves a lead through the follow-up pipeline.
func (s *Store) UpdateLeadStatus(ctx context.Context, leadID, status string) error {
	if s.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE leads SET status = $2, updated_at = NOW() WHERE id = $1`,
		leadID, status,
	)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	return nil
}

// InsertIssueReport appends a problem report.
func (s *Store) InsertIssueReport(ctx context.Context, report IssueReport) error {
	if s.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	query := `
		INSERT INTO issue_reports (session_id, issue_message, visualization_image_url, team)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query,
		report.SessionID, report.IssueMessage, nullable(report.VisualizationImageURL), nullable(report.Team),
	)
	if err != nil {
		return fmt.Errorf("insert issue report: %w", err)
	}
	return nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
