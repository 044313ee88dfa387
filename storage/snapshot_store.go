package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/archipelago-eco/archipelago/errors"
	"github.com/archipelago-eco/archipelago/metacommunity"
)

// Query constants
const (
	snapshotInsertQuery = `
		INSERT INTO snapshots (id, source, original_count, newick, tree_height, filtering_optimum, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	speciesInsertQuery = `
		INSERT INTO snapshot_species (snapshot_id, position, species_id, abundance, immigration_probability, trait_value)
		VALUES (?, ?, ?, ?, ?, ?)`

	snapshotSelectQuery = `
		SELECT source, original_count, newick, tree_height, filtering_optimum
		FROM snapshots WHERE id = ?`

	speciesSelectQuery = `
		SELECT species_id, abundance, immigration_probability, trait_value
		FROM snapshot_species WHERE snapshot_id = ?
		ORDER BY position`

	snapshotListQuery = `
		SELECT s.id, s.source, s.original_count, s.created_at, COUNT(sp.species_id)
		FROM snapshots s
		LEFT JOIN snapshot_species sp ON sp.snapshot_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at DESC, s.id`

	snapshotDeleteQuery = `DELETE FROM snapshots WHERE id = ?`
)

// SnapshotInfo summarizes a stored snapshot for listings.
type SnapshotInfo struct {
	ID            string
	Source        string
	OriginalCount int
	SpeciesCount  int
	CreatedAt     time.Time
}

// SnapshotStore persists species pools in SQLite.
type SnapshotStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSnapshotStore creates a snapshot store on an opened database.
func NewSnapshotStore(db *sql.DB, logger *zap.SugaredLogger) *SnapshotStore {
	return &SnapshotStore{
		db:     db,
		logger: logger,
	}
}

// SaveSnapshot writes the pool's species table and metadata as a new
// snapshot and returns its generated id. The pool must have been generated.
func (s *SnapshotStore) SaveSnapshot(pool *metacommunity.Pool) (string, error) {
	if !pool.Ready() {
		return "", errors.Newf("cannot snapshot pool in state %s", pool.State())
	}
	table := pool.Table()

	id := uuid.NewString()
	tx, err := s.db.Begin()
	if err != nil {
		return "", errors.Wrap(err, "begin snapshot tx")
	}

	_, err = tx.Exec(
		snapshotInsertQuery,
		id,
		pool.Source().String(),
		table.OriginalCount(),
		table.Newick(),
		table.TreeHeight(),
		pool.FilteringOptimum(),
		time.Now().UTC(),
	)
	if err != nil {
		tx.Rollback()
		return "", errors.Wrap(err, "insert snapshot")
	}

	for i, r := range table.Records() {
		_, err = tx.Exec(
			speciesInsertQuery,
			id,
			i,
			r.ID,
			r.Abundance,
			r.ImmigrationProbability,
			r.TraitValue,
		)
		if err != nil {
			tx.Rollback()
			return "", errors.Wrapf(err, "insert species %s", r.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit snapshot")
	}

	if s.logger != nil {
		s.logger.Infow("Snapshot saved",
			"snapshot_id", id,
			"source", pool.Source().String(),
			"species", table.Len(),
		)
	}
	return id, nil
}

// LoadSnapshot rebuilds a ready-for-sampling pool from a stored snapshot.
func (s *SnapshotStore) LoadSnapshot(id string) (*metacommunity.Pool, error) {
	var (
		source           string
		originalCount    int
		newick           string
		treeHeight       float64
		filteringOptimum float64
	)
	err := s.db.QueryRow(snapshotSelectQuery, id).Scan(
		&source, &originalCount, &newick, &treeHeight, &filteringOptimum)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "snapshot %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load snapshot %s", id)
	}

	rows, err := s.db.Query(speciesSelectQuery, id)
	if err != nil {
		return nil, errors.Wrapf(err, "load species for snapshot %s", id)
	}
	defer rows.Close()

	var records []metacommunity.Record
	for rows.Next() {
		var r metacommunity.Record
		if err := rows.Scan(&r.ID, &r.Abundance, &r.ImmigrationProbability, &r.TraitValue); err != nil {
			return nil, errors.Wrapf(err, "scan species for snapshot %s", id)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate species for snapshot %s", id)
	}

	pool, err := metacommunity.Restore(source, records, originalCount, newick, treeHeight, filteringOptimum)
	if err != nil {
		return nil, errors.Wrapf(err, "restore snapshot %s", id)
	}
	return pool, nil
}

// ListSnapshots returns all stored snapshots, newest first.
func (s *SnapshotStore) ListSnapshots() ([]SnapshotInfo, error) {
	rows, err := s.db.Query(snapshotListQuery)
	if err != nil {
		return nil, errors.Wrap(err, "list snapshots")
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.ID, &info.Source, &info.OriginalCount, &info.CreatedAt, &info.SpeciesCount); err != nil {
			return nil, errors.Wrap(err, "scan snapshot row")
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate snapshots")
	}
	return infos, nil
}

// DeleteSnapshot removes a snapshot and its species rows.
func (s *SnapshotStore) DeleteSnapshot(id string) error {
	res, err := s.db.Exec(snapshotDeleteQuery, id)
	if err != nil {
		return errors.Wrapf(err, "delete snapshot %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "delete snapshot %s", id)
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "snapshot %s", id)
	}
	if s.logger != nil {
		s.logger.Infow("Snapshot deleted", "snapshot_id", id)
	}
	return nil
}
