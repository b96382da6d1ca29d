package predict

import (
	"fmt"
	"sync"
	"time"

	"github.com/opdpulse/opdpulse/internal/analytics"
	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/models"
)

// HistoryFeed is the full-history query the predictor trains on
type HistoryFeed interface {
	All() ([]models.QueueSnapshot, error)
}

// State reports whether the predictor has a fitted model
type State string

const (
	StateUntrained State = "untrained"
	StateTrained   State = "trained"
)

// Config holds predictor hyperparameters and forecast assumptions
type Config struct {
	// Trees is the size of the regression forest
	Trees int

	// MaxDepth limits regression tree depth
	MaxDepth int

	// Seed makes training deterministic for identical data
	Seed int64

	// ForecastHours is the default forecast horizon
	ForecastHours int

	// AssumedDoctors is the staffing assumption used by forecasts
	AssumedDoctors int

	// MinutesPerVisit drives the untrained fallback heuristic
	MinutesPerVisit int
}

// DefaultConfig returns the default predictor configuration
func DefaultConfig() Config {
	return Config{
		Trees:           100,
		MaxDepth:        8,
		Seed:            42,
		ForecastHours:   24,
		AssumedDoctors:  3,
		MinutesPerVisit: 10,
	}
}

// Predictor maps queue state to an estimated wait in minutes. It starts
// untrained, answering with a closed-form heuristic, and switches to forest
// inference once Train fits a model. Train builds the new model off to the
// side and swaps it in under the write lock, so concurrent Predict calls
// never observe a half-updated model.
type Predictor struct {
	mu     sync.RWMutex
	model  *forestModel // nil while untrained
	feed   HistoryFeed
	cfg    Config
	logger *logging.Logger
}

// NewPredictor creates an untrained predictor over the given history feed
func NewPredictor(logger *logging.Logger, feed HistoryFeed, cfg Config) *Predictor {
	return &Predictor{
		feed:   feed,
		cfg:    cfg,
		logger: logger.With("component", "predict.predictor"),
	}
}

// State returns whether a fitted model is installed
func (p *Predictor) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.model == nil {
		return StateUntrained
	}
	return StateTrained
}

// Train fits the regression forest on the entire snapshot history. An empty
// history is not an error: Train returns (false, nil) and the predictor stays
// untrained. Store failures propagate.
func (p *Predictor) Train() (bool, error) {
	start := time.Now()

	snapshots, err := p.feed.All()
	if err != nil {
		return false, fmt.Errorf("failed to fetch training history: %w", err)
	}
	if len(snapshots) == 0 {
		p.logger.Warn("No historical data, predictor stays untrained")
		return false, nil
	}

	features := make([][]float64, len(snapshots))
	targets := make([]float64, len(snapshots))
	for i, snap := range snapshots {
		fv := DeriveTraining(snap)
		features[i] = fv.Values()
		targets[i] = fv.EstimatedWait
	}

	model := trainForest(features, targets, forestConfig{
		trees:    p.cfg.Trees,
		maxDepth: p.cfg.MaxDepth,
		seed:     p.cfg.Seed,
	})

	p.mu.Lock()
	p.model = model
	p.mu.Unlock()

	p.logger.Info("Predictor trained",
		"samples", len(snapshots),
		"trees", p.cfg.Trees,
		"duration", time.Since(start))
	return true, nil
}

// Predict estimates the wait in minutes for the current queue state
func (p *Predictor) Predict(patientsWaiting, activeDoctors int) float64 {
	return p.PredictAt(patientsWaiting, activeDoctors, time.Now())
}

// PredictAt estimates the wait in minutes for a queue state at a given time.
// Untrained, it falls back to MinutesPerVisit per patient per doctor (zero
// doctors means no estimate, 0). Trained, it runs forest inference; the
// output is not clamped, a pathological model may emit a negative value.
func (p *Predictor) PredictAt(patientsWaiting, activeDoctors int, ts time.Time) float64 {
	p.mu.RLock()
	model := p.model
	p.mu.RUnlock()

	if model == nil {
		if activeDoctors == 0 {
			return 0
		}
		return float64(patientsWaiting*p.cfg.MinutesPerVisit) / float64(activeDoctors)
	}

	fv := Derive(patientsWaiting, activeDoctors, ts)
	return model.predict(fv.Values())
}

// PredictFutureSlots generates the hourly forecast for a department. An
// untrained predictor trains first; if history is still empty the heuristic
// carries the forecast. The returned slice always holds exactly hours slots
// in chronological order.
func (p *Predictor) PredictFutureSlots(department string, hours int) ([]models.ForecastSlot, error) {
	if hours <= 0 {
		hours = p.cfg.ForecastHours
	}

	if p.State() == StateUntrained {
		if _, err := p.Train(); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	slots := make([]models.ForecastSlot, hours)
	for i := 0; i < hours; i++ {
		futureTime := now.Add(time.Duration(i) * time.Hour)
		load := SimulatedLoad(futureTime.Hour())

		wait := analytics.Round1(p.PredictAt(load, p.cfg.AssumedDoctors, futureTime))
		intensity := IntensityFor(wait)

		slots[i] = models.ForecastSlot{
			Time:        futureTime,
			TimeLabel:   futureTime.Format("03:04 PM"),
			WaitMinutes: wait,
			Intensity:   intensity,
			IsPeak:      intensity == "High",
		}
	}

	p.logger.Debug("Forecast generated", "department", department, "hours", hours)
	return slots, nil
}
