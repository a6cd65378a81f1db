package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/port"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
	pgpkg "github.com/bibbank/breachrisk/pkg/postgres"
)

// Compile-time interface check.
var _ port.RecordStore = (*IncidentRepository)(nil)

// DB is what the repository needs from *pgxpool.Pool.
type DB interface {
	pgpkg.Querier
	pgpkg.TxBeginner
}

// IncidentRepository implements port.RecordStore using PostgreSQL.
type IncidentRepository struct {
	db DB
}

// NewIncidentRepository creates a new IncidentRepository.
func NewIncidentRepository(db DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

const selectIncidents = `
	SELECT organization, incident_type, occurred_on, records_exposed, description
	FROM incidents`

// FetchAll returns every incident in insertion order.
func (r *IncidentRepository) FetchAll(ctx context.Context) ([]model.IncidentRecord, error) {
	rows, err := r.db.Query(ctx, selectIncidents+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	return collectIncidents(rows)
}

// FetchMatching returns incidents of incidentType whose organization
// contains organization, ignoring case.
func (r *IncidentRepository) FetchMatching(ctx context.Context, organization string, incidentType valueobject.IncidentType) ([]model.IncidentRecord, error) {
	rows, err := r.db.Query(ctx, selectIncidents+`
		WHERE organization ILIKE '%' || $1 || '%' ESCAPE '\' AND incident_type = $2
		ORDER BY id`, escapeLike(strings.TrimSpace(organization)), incidentType.String())
	if err != nil {
		return nil, fmt.Errorf("query matching incidents: %w", err)
	}
	return collectIncidents(rows)
}

// Save inserts records in one transaction. Either all are stored or none.
func (r *IncidentRepository) Save(ctx context.Context, records ...model.IncidentRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	err := pgpkg.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, rec := range records {
			batch.Queue(`
				INSERT INTO incidents (organization, incident_type, occurred_on, records_exposed, description)
				VALUES ($1, $2, $3, $4, $5)`,
				rec.Organization(), rec.IncidentType().String(), rec.Date(), rec.RecordsExposed(), rec.Description())
		}

		br := tx.SendBatch(ctx, batch)
		for range records {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert incident: %w", err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func collectIncidents(rows pgx.Rows) ([]model.IncidentRecord, error) {
	defer rows.Close()

	var out []model.IncidentRecord
	for rows.Next() {
		var (
			org, typ, desc string
			date           time.Time
			records        int64
		)
		if err := rows.Scan(&org, &typ, &date, &records, &desc); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		rec, err := model.NewIncidentRecord(org, valueobject.IncidentTypeOrOther(typ), date, records, desc)
		if err != nil {
			return nil, fmt.Errorf("stored incident is invalid: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
