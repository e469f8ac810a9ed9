package extract

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/use-agent/topchart/models"
	"github.com/use-agent/topchart/simhash"
)

// MaxRows is the chart length; rows beyond it are ignored.
const MaxRows = 250

// Options configures an Extractor. Zero values select the defaults.
type Options struct {
	// MaxRows bounds the rows visited. Default: MaxRows.
	MaxRows int

	// RowLocators overrides the row container locators.
	RowLocators []string

	// Chains overrides the field chains.
	Chains *Chains

	// ProgressEvery logs a progress line after every N records. Default: 25.
	ProgressEvery int

	Logger *slog.Logger
}

// Extractor collects rows from a document and extracts one movie per row.
// It holds no per-run state and may be reused.
type Extractor struct {
	maxRows       int
	rowLocators   []string
	chains        Chains
	progressEvery int
	log           *slog.Logger
}

// Batch is the outcome of one extraction pass.
type Batch struct {
	Movies []models.Movie

	// Locator is the row container locator that matched.
	Locator string

	// RowsFound is the number of rows visited after truncation.
	RowsFound int

	// Skipped counts rows that produced no record.
	Skipped int

	// LayoutFingerprint is the hex SimHash of the first row's markup, or ""
	// when the document cannot expose row HTML.
	LayoutFingerprint string
}

// New builds an Extractor from opts.
func New(opts Options) *Extractor {
	e := &Extractor{
		maxRows:       opts.MaxRows,
		rowLocators:   opts.RowLocators,
		progressEvery: opts.ProgressEvery,
		log:           opts.Logger,
	}
	if e.maxRows <= 0 || e.maxRows > MaxRows {
		e.maxRows = MaxRows
	}
	if len(e.rowLocators) == 0 {
		e.rowLocators = RowLocators
	}
	if opts.Chains != nil {
		e.chains = *opts.Chains
	} else {
		e.chains = DefaultChains()
	}
	if e.progressEvery <= 0 {
		e.progressEvery = 25
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// CollectRows returns the rows matched by the first row locator that yields
// at least one node, truncated to the configured maximum, together with that
// locator. Matches of later locators are never merged in.
func (e *Extractor) CollectRows(doc Document) ([]Row, string, error) {
	for _, loc := range e.rowLocators {
		rows, err := doc.FindAll(loc)
		if err != nil {
			e.log.Debug("row locator failed", "locator", loc, "error", err)
			continue
		}
		if len(rows) == 0 {
			continue
		}
		e.log.Info("movie rows found", "count", len(rows), "locator", loc)
		if len(rows) > e.maxRows {
			rows = rows[:e.maxRows]
		}
		return rows, loc, nil
	}
	return []Row{}, "", ErrNoRows
}

// HasRows reports whether any row locator matches doc.
func (e *Extractor) HasRows(doc Document) bool {
	for _, loc := range e.rowLocators {
		if rows, err := doc.FindAll(loc); err == nil && len(rows) > 0 {
			return true
		}
	}
	return false
}

// ExtractRow builds the movie for row at the given rank. It returns
// ErrNoTitle when the title chain is exhausted and an ErrDetached error when
// the row handle stopped answering.
func (e *Extractor) ExtractRow(row Row, rank int) (models.Movie, error) {
	title, err := e.chains.Title.Resolve(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Movie{}, ErrNoTitle
		}
		return models.Movie{}, err
	}

	m := models.Movie{Rank: rank, Title: title}
	fields := []struct {
		chain *Chain
		dst   *string
	}{
		{&e.chains.Year, &m.ReleaseYear},
		{&e.chains.Rating, &m.Rating},
		{&e.chains.Votes, &m.Votes},
		{&e.chains.URL, &m.URL},
	}
	for _, f := range fields {
		v, err := f.chain.Resolve(row)
		switch {
		case err == nil:
			*f.dst = v
		case errors.Is(err, ErrNotFound):
			*f.dst = models.NotAvailable
		default:
			return models.Movie{}, err
		}
	}
	return m, nil
}

// Extract runs one pass over doc. Ranks follow document order starting at 1;
// a skipped row leaves its rank unused. ErrNoRows is returned with an empty
// batch when no row locator matched.
func (e *Extractor) Extract(doc Document) (Batch, error) {
	rows, loc, err := e.CollectRows(doc)
	if err != nil {
		return Batch{Movies: []models.Movie{}}, err
	}

	b := Batch{
		Movies:            make([]models.Movie, 0, len(rows)),
		Locator:           loc,
		RowsFound:         len(rows),
		LayoutFingerprint: fingerprint(rows[0]),
	}

	for i, row := range rows {
		rank := i + 1
		m, err := e.safeExtractRow(row, rank)
		if err != nil {
			b.Skipped++
			if errors.Is(err, ErrNoTitle) {
				e.log.Debug("row skipped: no title", "rank", rank)
			} else {
				e.log.Warn("failed to extract movie row", "rank", rank, "error", err)
			}
			continue
		}
		b.Movies = append(b.Movies, m)
		if len(b.Movies)%e.progressEvery == 0 {
			e.log.Info("extraction progress", "movies", len(b.Movies))
		}
	}

	e.log.Info("extraction finished",
		"movies", len(b.Movies),
		"skipped", b.Skipped,
		"locator", loc,
	)
	return b, nil
}

// safeExtractRow confines a panic raised by a document adapter to its row.
func (e *Extractor) safeExtractRow(row Row, rank int) (m models.Movie, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("row %d: panic: %v", rank, r)
		}
	}()
	return e.ExtractRow(row, rank)
}

func fingerprint(row Row) string {
	mr, ok := row.(MarkupRow)
	if !ok {
		return ""
	}
	markup, err := mr.HTML()
	if err != nil || markup == "" {
		return ""
	}
	return fmt.Sprintf("%016x", simhash.FingerprintDOM(markup))
}
