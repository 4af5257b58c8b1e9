package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tcua/price-index-service/internal/classifier"
	"github.com/tcua/price-index-service/internal/database"
	"github.com/tcua/price-index-service/internal/models"
	"github.com/tcua/price-index-service/internal/runguard"
	"github.com/tcua/price-index-service/internal/taxonomy"
)

// Store is the persistence surface the pipeline writes through.
// *database.DB satisfies it.
type Store interface {
	Catalog
	RecordObservation(o *models.PriceObservation) error
	RebuildDay(date time.Time) ([]*models.DailyIndexEntry, error)
	InsertQualityLog(q *models.QualityLogEntry) error
	MarkInactiveNotSeenSince(cutoff time.Time) (int64, error)
}

// Products absent this long flip to inactive after a run. They are never
// deleted and reactivate on their next observation.
const staleAfterDays = 7

// Publisher announces run outcomes. The Kafka producer satisfies it; a nil
// Publisher disables events.
type Publisher interface {
	PublishRunCompleted(ctx context.Context, date time.Time, source string, quality *models.QualityLogEntry) error
	PublishRunFailed(ctx context.Context, date time.Time, source string, runErr error) error
}

// ErrRunInProgress is returned when another process already holds the run
// lock for the date.
var ErrRunInProgress = errors.New("a run for this date is already in progress")

// Runner executes one batch: classify, resolve identities, record prices,
// rebuild the daily index, write the quality log. Within a run listings are
// processed sequentially so later listings observe earlier catalog inserts.
type Runner struct {
	store        Store
	guard        *runguard.Guard
	publisher    Publisher
	taxonomyPath string
	log          zerolog.Logger
}

// NewRunner creates a Runner. guard and publisher may be nil.
func NewRunner(store Store, guard *runguard.Guard, publisher Publisher, taxonomyPath string, log zerolog.Logger) *Runner {
	return &Runner{
		store:        store,
		guard:        guard,
		publisher:    publisher,
		taxonomyPath: taxonomyPath,
		log:          log,
	}
}

// Run processes one day's listings. The quality log entry is written only
// after every observation and index row is durable; an aborted run leaves no
// quality record asserting completion it did not reach.
func (r *Runner) Run(ctx context.Context, date time.Time, source string, listings []models.RawListing) (*models.QualityLogEntry, error) {
	quality, err := r.run(ctx, date, source, listings)
	if err != nil {
		r.log.Error().Err(err).Time("date", date).Str("source", source).Msg("run failed")
		if r.publisher != nil {
			if pubErr := r.publisher.PublishRunFailed(ctx, date, source, err); pubErr != nil {
				r.log.Warn().Err(pubErr).Msg("failed to publish run failure")
			}
		}
		return nil, err
	}

	if r.publisher != nil {
		if pubErr := r.publisher.PublishRunCompleted(ctx, date, source, quality); pubErr != nil {
			r.log.Warn().Err(pubErr).Msg("failed to publish run completion")
		}
	}
	return quality, nil
}

func (r *Runner) run(ctx context.Context, date time.Time, source string, listings []models.RawListing) (*models.QualityLogEntry, error) {
	// Configuration problems abort before any listing is touched.
	rules, err := taxonomy.Load(r.taxonomyPath)
	if err != nil {
		return nil, err
	}

	ok, err := r.guard.Acquire(ctx, date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	defer func() {
		if relErr := r.guard.Release(context.WithoutCancel(ctx), date); relErr != nil {
			r.log.Warn().Err(relErr).Msg("failed to release run guard")
		}
	}()

	r.log.Info().Time("date", date).Str("source", source).Int("fetched", len(listings)).Msg("run started")

	stats := RunStats{RecordsFetched: len(listings)}
	resolver := NewResolver(r.store)

	for _, listing := range listings {
		classification, matched := classifier.Classify(listing, rules)
		if !matched {
			stats.Unclassified++
			continue
		}
		stats.RecordsClassified++

		normalized := classifier.NormalizeName(listing.Name, rules.NoiseTokens)
		if normalized == "" {
			// Classification succeeded but no identity can be formed
			// from the name; the listing is dropped before resolution.
			stats.Dropped++
			continue
		}

		productID, err := resolver.Resolve(
			classification, listing.Name, normalized, classifier.Brand(listing.Name), source, date,
		)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", listing.Name, err)
		}

		err = r.store.RecordObservation(&models.PriceObservation{
			Date:      date,
			ProductID: productID,
			Price:     listing.Price,
			Source:    source,
			RawInfo:   listing.RawInfo,
		})
		if errors.Is(err, database.ErrDuplicateObservation) {
			// First value wins; only quality accounting sees the repeat.
			stats.Duplicates++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", listing.Name, err)
		}
	}

	// Aggregate only after all observations for the run are durable.
	entries, err := r.store.RebuildDay(date)
	if err != nil {
		return nil, fmt.Errorf("rebuild daily index: %w", err)
	}

	quality := stats.QualityEntry(date)
	if err := r.store.InsertQualityLog(quality); err != nil {
		return nil, fmt.Errorf("write quality log: %w", err)
	}

	// Housekeeping after the run's own rows are durable. A failure here
	// does not invalidate the run.
	deactivated, err := r.store.MarkInactiveNotSeenSince(date.AddDate(0, 0, -staleAfterDays))
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to deactivate stale products")
	}

	r.log.Info().
		Time("date", date).
		Int("fetched", stats.RecordsFetched).
		Int("classified", stats.RecordsClassified).
		Int("unclassified", stats.Unclassified).
		Int("dropped", stats.Dropped).
		Int("duplicates", stats.Duplicates).
		Int("index_groups", len(entries)).
		Int64("deactivated", deactivated).
		Str("success_rate", quality.SuccessRate.String()).
		Msg("run completed")

	return quality, nil
}
