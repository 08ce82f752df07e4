package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketdesk/internal/domain/market"
	"marketdesk/internal/wire"
)

// MarketRepository persists markets for the development server.
type MarketRepository struct {
	db *DB
}

// NewMarketRepository creates a new MarketRepository
func NewMarketRepository(db *DB) *MarketRepository {
	return &MarketRepository{db: db}
}

// ListMarketsOptions provides filtering and paging for listing markets.
type ListMarketsOptions struct {
	Search string
	Page   int
	Limit  int
}

// List returns one page of markets plus the total count of matches.
// Buildings and stalls are loaded for every returned market.
func (r *MarketRepository) List(ctx context.Context, opts ListMarketsOptions) ([]market.Market, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if opts.Search != "" {
		where = append(where, "(name LIKE ? OR id LIKE ? OR street_address LIKE ? OR town LIKE ? OR lga LIKE ? OR state LIKE ?)")
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern, pattern, pattern)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM markets WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count markets: %w", err)
	}

	query := `SELECT id, name, street_address, town, lga, state, created_at, updated_at
		FROM markets WHERE ` + clause + " ORDER BY created_at DESC, id"
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		offset := 0
		if opts.Page > 1 {
			offset = (opts.Page - 1) * opts.Limit
		}
		args = append(args, opts.Limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list markets: %w", err)
	}
	defer rows.Close()

	markets := []market.Market{}
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, 0, err
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range markets {
		if err := r.loadGrounds(ctx, &markets[i]); err != nil {
			return nil, 0, err
		}
	}
	return markets, total, nil
}

// Get returns one market with its buildings and stalls.
func (r *MarketRepository) Get(ctx context.Context, id string) (market.Market, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, street_address, town, lga, state, created_at, updated_at
		FROM markets WHERE id = ?`, id)
	m, err := scanMarket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return market.Market{}, ErrNotFound
	}
	if err != nil {
		return market.Market{}, err
	}
	if err := r.loadGrounds(ctx, &m); err != nil {
		return market.Market{}, err
	}
	return m, nil
}

// Create registers a new market, assigning its identifier.
func (r *MarketRepository) Create(ctx context.Context, req market.CreateRequest) (market.Market, error) {
	now := time.Now().UTC()
	m := market.Market{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Address:   req.Address,
		CreatedAt: wire.NewTime(now),
		UpdatedAt: wire.NewTime(now),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO markets (id, name, street_address, town, lga, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Address.StreetAddress, m.Address.Town, m.Address.LGA, m.Address.State, now, now,
	)
	if err != nil {
		return market.Market{}, fmt.Errorf("failed to create market: %w", err)
	}
	return m, nil
}

// Update applies a partial update and returns the stored row.
func (r *MarketRepository) Update(ctx context.Context, id string, req market.UpdateRequest) (market.Market, error) {
	m, err := r.Get(ctx, id)
	if err != nil {
		return market.Market{}, err
	}
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Address != nil {
		m.Address = *req.Address
	}
	now := time.Now().UTC()
	m.UpdatedAt = wire.NewTime(now)

	_, err = r.db.ExecContext(ctx, `
		UPDATE markets SET name = ?, street_address = ?, town = ?, lga = ?, state = ?, updated_at = ?
		WHERE id = ?`,
		m.Name, m.Address.StreetAddress, m.Address.Town, m.Address.LGA, m.Address.State, now, m.ID,
	)
	if err != nil {
		return market.Market{}, fmt.Errorf("failed to update market: %w", err)
	}
	return m, nil
}

// Delete removes a market along with its buildings and stalls.
func (r *MarketRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM markets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete market: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddBuilding attaches a building to a market.
func (r *MarketRepository) AddBuilding(ctx context.Context, marketID string, b market.Building) (market.Building, error) {
	b.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO buildings (id, market_id, name, floors) VALUES (?, ?, ?, ?)",
		b.ID, marketID, b.Name, b.Floors,
	)
	if err != nil {
		return market.Building{}, fmt.Errorf("failed to add building: %w", err)
	}
	return b, nil
}

// AddStall attaches a stall to a market.
func (r *MarketRepository) AddStall(ctx context.Context, marketID string, s market.Stall) (market.Stall, error) {
	s.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO stalls (id, market_id, code, building_id, occupied) VALUES (?, ?, ?, ?, ?)",
		s.ID, marketID, s.Code, nullString(s.BuildingID), s.Occupied,
	)
	if err != nil {
		return market.Stall{}, fmt.Errorf("failed to add stall: %w", err)
	}
	return s, nil
}

func (r *MarketRepository) loadGrounds(ctx context.Context, m *market.Market) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, floors FROM buildings WHERE market_id = ? ORDER BY name", m.ID)
	if err != nil {
		return fmt.Errorf("failed to load buildings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b market.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.Floors); err != nil {
			return err
		}
		m.Buildings = append(m.Buildings, b)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	stallRows, err := r.db.QueryContext(ctx,
		"SELECT id, code, building_id, occupied FROM stalls WHERE market_id = ? ORDER BY code", m.ID)
	if err != nil {
		return fmt.Errorf("failed to load stalls: %w", err)
	}
	defer stallRows.Close()
	for stallRows.Next() {
		var s market.Stall
		var buildingID sql.NullString
		if err := stallRows.Scan(&s.ID, &s.Code, &buildingID, &s.Occupied); err != nil {
			return err
		}
		s.BuildingID = buildingID.String
		m.Stalls = append(m.Stalls, s)
	}
	return stallRows.Err()
}

func scanMarket(row rowScanner) (market.Market, error) {
	var m market.Market
	var createdAt, updatedAt time.Time
	err := row.Scan(&m.ID, &m.Name, &m.Address.StreetAddress, &m.Address.Town,
		&m.Address.LGA, &m.Address.State, &createdAt, &updatedAt)
	if err != nil {
		return market.Market{}, err
	}
	m.CreatedAt = wire.NewTime(createdAt)
	m.UpdatedAt = wire.NewTime(updatedAt)
	return m, nil
}
