package journals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	"github.com/scholaris-erp/scholaris/internal/platform/db"
)

const (
	entryColumns = `e.id, e.journal_id, e.entry_date, e.description, e.reference, COALESCE(e.source_module, ''),
e.source_id, e.is_closing, e.created_by, e.created_at`
	referenceConstraint = "uq_journal_entries_reference"
)

// Queries runs journal statements against a pool or a caller-owned transaction.
type Queries struct {
	db db.DBTX
}

// NewQueries binds Queries to conn.
func NewQueries(conn db.DBTX) *Queries {
	return &Queries{db: conn}
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.JournalID, &e.EntryDate, &e.Description, &e.Reference, &e.SourceModule,
		&e.SourceID, &e.IsClosing, &e.CreatedBy, &e.CreatedAt)
	return e, err
}

// InsertEntry writes the entry header.
func (q *Queries) InsertEntry(ctx context.Context, d Draft) (Entry, error) {
	var createdBy any
	if d.CreatedBy != 0 {
		createdBy = d.CreatedBy
	}
	var module any
	if d.SourceModule != "" {
		module = d.SourceModule
	}
	row := q.db.QueryRow(ctx, `INSERT INTO journal_entries AS e (journal_id, entry_date, description, reference, source_module, source_id, is_closing, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING `+entryColumns,
		d.JournalID, d.EntryDate, strings.TrimSpace(d.Description), strings.TrimSpace(d.Reference), module, d.SourceID, d.IsClosing, createdBy)
	entry, err := scanEntry(row)
	if err != nil {
		if db.IsUniqueViolation(err, referenceConstraint) {
			return Entry{}, shared.ErrDuplicateReference
		}
		if db.IsForeignKeyViolation(err) {
			return Entry{}, shared.Validationf("journal %d does not exist", d.JournalID)
		}
		return Entry{}, err
	}
	return entry, nil
}

// InsertLines writes the entry lines in order.
func (q *Queries) InsertLines(ctx context.Context, entryID int64, lines []LineInput) ([]Line, error) {
	out := make([]Line, 0, len(lines))
	for _, in := range lines {
		line := Line{EntryID: entryID, AccountID: in.AccountID, Debit: in.Debit, Credit: in.Credit, Description: in.Description}
		err := q.db.QueryRow(ctx, `INSERT INTO journal_entry_lines (journal_entry_id, account_id, debit, credit, description)
VALUES ($1,$2,$3,$4,$5) RETURNING id`, entryID, in.AccountID, in.Debit, in.Credit, in.Description).Scan(&line.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

// Get loads an entry with its lines.
func (q *Queries) Get(ctx context.Context, id int64) (Entry, error) {
	entry, err := scanEntry(q.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries e WHERE e.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrJournalNotFound
		}
		return Entry{}, err
	}
	lines, err := q.linesFor(ctx, []int64{id})
	if err != nil {
		return Entry{}, err
	}
	entry.Lines = lines[id]
	return entry, nil
}

// List returns entries matching filter, newest first, with the total count.
func (q *Queries) List(ctx context.Context, filter ListFilter) ([]Entry, int, error) {
	where, args := filterClause(filter)
	var total int
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries e`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit := filter.PerPage
	if limit <= 0 {
		limit = 50
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)
	sql := fmt.Sprintf(`SELECT %s FROM journal_entries e%s ORDER BY e.entry_date DESC, e.id DESC LIMIT $%d OFFSET $%d`,
		entryColumns, where, len(args)-1, len(args))
	entries, err := q.queryEntries(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// EntriesForAccount returns every entry touching accountID dated within
// [start, end] (either bound optional), in posting order.
func (q *Queries) EntriesForAccount(ctx context.Context, filter ListFilter) ([]Entry, error) {
	where, args := filterClause(filter)
	return q.queryEntries(ctx, `SELECT `+entryColumns+` FROM journal_entries e`+where+` ORDER BY e.entry_date, e.id`, args...)
}

// DeleteEntries removes entries and their lines, returning the number of entries deleted.
func (q *Queries) DeleteEntries(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if _, err := q.db.Exec(ctx, `DELETE FROM journal_entry_lines WHERE journal_entry_id = ANY($1)`, ids); err != nil {
		return 0, err
	}
	cmd, err := q.db.Exec(ctx, `DELETE FROM journal_entries WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (q *Queries) queryEntries(ctx context.Context, sql string, args ...any) ([]Entry, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	var (
		entries []Entry
		ids     []int64
	)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, e)
		ids = append(ids, e.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return entries, nil
	}
	lines, err := q.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = lines[entries[i].ID]
	}
	return entries, nil
}

func (q *Queries) linesFor(ctx context.Context, ids []int64) (map[int64][]Line, error) {
	rows, err := q.db.Query(ctx, `SELECT id, journal_entry_id, account_id, debit, credit, COALESCE(description, '')
FROM journal_entry_lines WHERE journal_entry_id = ANY($1) ORDER BY journal_entry_id, id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64][]Line, len(ids))
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit, &l.Description); err != nil {
			return nil, err
		}
		out[l.EntryID] = append(out[l.EntryID], l)
	}
	return out, rows.Err()
}

func filterClause(filter ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.AccountID > 0 {
		args = append(args, filter.AccountID)
		conds = append(conds, fmt.Sprintf("EXISTS (SELECT 1 FROM journal_entry_lines l WHERE l.journal_entry_id = e.id AND l.account_id = $%d)", len(args)))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		conds = append(conds, fmt.Sprintf("e.entry_date >= $%d", len(args)))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		conds = append(conds, fmt.Sprintf("e.entry_date <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
