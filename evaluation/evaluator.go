package evaluation

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-eval/profiler"
)

// Report is the outcome of a full evaluation run.
type Report struct {
	RunID          string                    `json:"run_id"`
	CreatedAt      time.Time                 `json:"created_at"`
	Threshold      float64                   `json:"overlap_threshold"`
	SentinelPolicy SentinelPolicy            `json:"sentinel_policy"`
	Classes        []ClassResult             `json:"classes"`
	MeanAP         float64                   `json:"map"`
	ScoredClasses  int                       `json:"scored_classes"`
	Duration       time.Duration             `json:"duration"`
	Timings        []profiler.OperationStats `json:"timings"`
}

// Class returns the result of the named class.
func (r *Report) Class(name string) (*ClassResult, bool) {
	for i := range r.Classes {
		if r.Classes[i].Class == name {
			return &r.Classes[i], true
		}
	}
	return nil, false
}

// Evaluator runs the VOC protocol over a dataset and per-class detections.
type Evaluator struct {
	cfg      Config
	log      logrus.FieldLogger
	profiler *profiler.OperationProfiler
}

// NewEvaluator creates an evaluator for a validated configuration.
//
// Arguments:
//   - cfg: The evaluation configuration.
//   - logger: Destination for progress logs. Nil uses the logrus standard logger.
//
// Returns:
//   - *Evaluator: The evaluator.
//   - error: If the configuration is invalid.
//
// @example
// ev, err := NewEvaluator(DefaultConfig([]string{"person"}), nil)
// report, err := ev.Evaluate(ctx, dataset, detections)
func NewEvaluator(cfg Config, logger logrus.FieldLogger) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Evaluator{
		cfg:      cfg,
		log:      logger,
		profiler: profiler.NewOperationProfiler(),
	}, nil
}

// Config returns the configuration the evaluator was built with.
func (e *Evaluator) Config() Config {
	return e.cfg
}

// EvaluateClass scores the detections of a single class.
//
// A fresh ClassIndex is built for every call, so repeated calls never see
// matched flags from an earlier run. Classes without detections or without
// positives are reported with sentinel values instead of an error.
//
// Arguments:
//   - dataset: The ground truth.
//   - class: The class to score.
//   - dets: Detections of the class, in any order.
//
// Returns:
//   - *ClassResult: The class outcome.
//   - error: If the dataset or detections are malformed.
func (e *Evaluator) EvaluateClass(dataset *Dataset, class string, dets []Detection) (*ClassResult, error) {
	done := e.profiler.StartOperation("class")

	index, err := NewClassIndex(dataset, class)
	if err != nil {
		return nil, err
	}

	res := &ClassResult{
		Class:      class,
		Positives:  index.Positives(),
		Detections: len(dets),
	}
	log := e.log.WithFields(logrus.Fields{"class": class, "npos": res.Positives})

	if len(dets) == 0 {
		res.setSentinel(StatusNoDetections)
		res.Missed = index.Unmatched()
		res.Duration = done()
		log.Warn("⚠️  no detections for class")
		return res, nil
	}

	match, err := Match(index, dets, e.cfg.OverlapThreshold)
	if err != nil {
		return nil, errors.Wrapf(err, "matching class %q", class)
	}
	res.TruePositives, res.FalsePositives, res.Ignored = match.Counts()
	res.UnknownImages = match.UnknownImages
	res.Missed = index.Unmatched()

	if match.UnknownImages > 0 {
		log.WithField("detections", match.UnknownImages).Debug("detections reference images outside the evaluation set")
	}

	curve, err := BuildCurve(match.TP, match.FP, index.Positives())
	switch {
	case errors.Is(err, ErrZeroPositives):
		res.setSentinel(StatusNoPositives)
		res.Duration = done()
		log.Warn("⚠️  class has no positive ground truth, recall is undefined")
		return res, nil
	case err != nil:
		return nil, errors.Wrapf(err, "building curve for class %q", class)
	}

	ap, err := AveragePrecision(curve.Recall, curve.Precision)
	if err != nil {
		return nil, errors.Wrapf(err, "integrating class %q", class)
	}

	res.Status = StatusScored
	res.Recall = curve.Recall
	res.Precision = curve.Precision
	res.AP = ap
	res.FinalRecall, res.FinalPrecision = 0, 0
	if n := len(curve.Recall); n > 0 {
		res.FinalRecall = curve.Recall[n-1]
		res.FinalPrecision = curve.Precision[n-1]
	}
	res.Duration = done()

	log.WithFields(logrus.Fields{
		"ap":  ap,
		"tp":  res.TruePositives,
		"fp":  res.FalsePositives,
		"rec": res.FinalRecall,
	}).Debug("class evaluated")

	return res, nil
}

// Evaluate scores every configured class and aggregates the mean AP.
//
// Classes are evaluated concurrently on Config.Workers goroutines; each class
// builds its own ClassIndex. The report lists classes in Config.Classes order.
// Detections for classes outside the label set are ignored with a warning.
//
// Arguments:
//   - ctx: Cancels the run between classes.
//   - dataset: The ground truth.
//   - detections: Detections keyed by class name.
//
// Returns:
//   - *Report: Per-class results and the mean AP.
//   - error: If inputs are malformed or ctx is cancelled.
func (e *Evaluator) Evaluate(ctx context.Context, dataset *Dataset, detections map[string][]Detection) (*Report, error) {
	if err := dataset.Validate(); err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(e.cfg.Classes))
	for _, cls := range e.cfg.Classes {
		known[cls] = struct{}{}
	}
	for cls := range detections {
		if _, ok := known[cls]; !ok {
			e.log.WithField("class", cls).Warn("⚠️  detections for unknown class ignored")
		}
	}

	start := time.Now()
	results := make([]ClassResult, len(e.cfg.Classes))
	jobs := make(chan int, len(e.cfg.Classes))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for w := 0; w < min(e.cfg.Workers, len(e.cfg.Classes)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				cls := e.cfg.Classes[i]
				res, err := e.EvaluateClass(dataset, cls, detections[cls])
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				results[i] = *res
			}
		}()
	}

	for i := range e.cfg.Classes {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "evaluation cancelled")
	}
	if firstErr != nil {
		return nil, firstErr
	}

	report := &Report{
		RunID:          uuid.New().String(),
		CreatedAt:      start,
		Threshold:      e.cfg.OverlapThreshold,
		SentinelPolicy: e.cfg.SentinelPolicy,
		Classes:        results,
		Duration:       time.Since(start),
		Timings:        e.profiler.Snapshot(),
	}

	meanAP, scored, err := MeanAP(results, e.cfg.SentinelPolicy)
	if err != nil {
		e.log.WithError(err).Warn("⚠️  mean AP undefined")
	}
	report.MeanAP = meanAP
	report.ScoredClasses = scored

	for _, r := range results {
		e.log.WithFields(logrus.Fields{"class": r.Class, "status": r.Status}).Infof("AP for %s = %.4f", r.Class, r.AP)
	}
	e.log.WithFields(logrus.Fields{
		"run_id": report.RunID,
		"scored": scored,
	}).Infof("✅ Mean AP = %.4f", meanAP)

	return report, nil
}
