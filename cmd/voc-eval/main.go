package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-eval/annotations"
	"github.com/nvr-ai/go-eval/common"
	"github.com/nvr-ai/go-eval/config"
	"github.com/nvr-ai/go-eval/evaluation"
	"github.com/nvr-ai/go-eval/results"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to YAML evaluation configuration file")
		imageSet    = flag.String("imageset", "", "File listing the image ids to evaluate")
		annotDir    = flag.String("annotations", "", "Directory of per-image annotation files")
		imageDir    = flag.String("images", "", "Directory of images (text annotations and normalized boxes)")
		imageExt    = flag.String("ext", "", "Image file extension")
		format      = flag.String("format", "", "Annotation format: text or voc")
		cachePath   = flag.String("cache", "", "Ground-truth cache file")
		resultsDir  = flag.String("results", "", "Directory containing results/result_<class>.txt")
		boxesPath   = flag.String("boxes", "", "Raw detector output (JSON) to convert before scoring")
		normalized  = flag.Bool("normalized", false, "Raw detector boxes are normalized to [0, 1]")
		outputDir   = flag.String("output", "", "Output directory for reports")
		classes     = flag.String("classes", "", "Comma separated class names")
		threshold   = flag.Float64("threshold", evaluation.DefaultOverlapThreshold, "IoU a detection must exceed to match")
		sentinels   = flag.String("sentinels", "", "Sentinel AP handling in the mean: exclude or include")
		workers     = flag.Int("workers", 0, "Classes evaluated concurrently (0 = one per CPU)")
		timeout     = flag.Duration("timeout", 30*time.Minute, "Evaluation timeout duration")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		writeConfig = flag.String("write-config", "", "Write the effective configuration to this path and exit")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := config.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	// Flags given explicitly override the configuration file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "imageset":
			cfg.ImageSet = *imageSet
		case "annotations":
			cfg.AnnotationDir = *annotDir
		case "images":
			cfg.ImageDir = *imageDir
		case "ext":
			cfg.ImageExt = *imageExt
		case "format":
			cfg.Format = annotations.Format(*format)
		case "cache":
			cfg.CachePath = *cachePath
		case "results":
			cfg.ResultsDir = *resultsDir
		case "boxes":
			cfg.BoxesPath = *boxesPath
		case "normalized":
			cfg.NormalizedBoxes = *normalized
		case "output":
			cfg.OutputDir = *outputDir
		case "classes":
			cfg.Evaluation.Classes = splitClasses(*classes)
		case "threshold":
			cfg.Evaluation.OverlapThreshold = *threshold
		case "sentinels":
			cfg.Evaluation.SentinelPolicy = evaluation.SentinelPolicy(*sentinels)
		case "workers":
			cfg.Evaluation.Workers = *workers
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Configuration written to %s\n", *writeConfig)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	fmt.Println("Starting evaluation...")
	start := time.Now()

	report, files, err := run(ctx, cfg, annotations.GoCVSizer{}, log)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	fmt.Printf("Evaluation completed in %v\n", time.Since(start))
	fmt.Printf("\n=== EVALUATION RESULTS ===\n")
	if err := results.WriteTable(os.Stdout, report); err != nil {
		log.Fatalf("Failed to print results: %v", err)
	}
	fmt.Printf("\nReport saved to: %s\n", files.Report)
	fmt.Printf("Summary saved to: %s\n", files.Summary)
}

// run executes one evaluation and saves its report.
//
// Arguments:
//   - ctx: Cancels the evaluation.
//   - cfg: A validated configuration.
//   - sizer: Reports image sizes for text annotations and normalized boxes.
//   - log: Progress logger.
//
// Returns:
//   - *evaluation.Report: The evaluation report.
//   - results.ReportFiles: Where the report was saved.
//   - error: If any stage fails.
func run(ctx context.Context, cfg *config.Config, sizer annotations.ImageSizer, log logrus.FieldLogger) (*evaluation.Report, results.ReportFiles, error) {
	dataset, err := annotations.NewLoader(cfg.LoaderOptions(sizer), log).Load()
	if err != nil {
		return nil, results.ReportFiles{}, errors.Wrap(err, "loading ground truth")
	}
	log.WithField("images", len(dataset.ImageIDs)).Info("📂 Ground truth loaded")

	if cfg.BoxesPath != "" {
		if err := convertBoxes(cfg, sizer, log); err != nil {
			return nil, results.ReportFiles{}, err
		}
	}

	detections, err := results.ReadDetections(cfg.ResultsDir, cfg.Evaluation.Classes)
	if err != nil {
		return nil, results.ReportFiles{}, errors.Wrap(err, "reading detections")
	}

	evaluator, err := evaluation.NewEvaluator(cfg.Evaluation, log)
	if err != nil {
		return nil, results.ReportFiles{}, err
	}

	report, err := evaluator.Evaluate(ctx, dataset, detections)
	if err != nil {
		return nil, results.ReportFiles{}, err
	}

	files, err := results.SaveReport(cfg.OutputDir, report)
	if err != nil {
		return nil, results.ReportFiles{}, err
	}
	return report, files, nil
}

// convertBoxes turns raw detector output into per-class result files.
func convertBoxes(cfg *config.Config, sizer annotations.ImageSizer, log logrus.FieldLogger) error {
	raw, err := common.LoadBoxes(cfg.BoxesPath)
	if err != nil {
		return err
	}

	var size common.SizeFunc
	if cfg.NormalizedBoxes {
		size = func(id string) (image.Point, error) {
			return sizer.Size(cfg.ImagePath(id))
		}
	}

	detections, err := common.ToDetections(raw, cfg.Evaluation.Classes, size)
	if err != nil {
		return errors.Wrap(err, "converting detector output")
	}
	if err := results.WriteDetections(cfg.ResultsDir, cfg.Evaluation.Classes, detections); err != nil {
		return errors.Wrap(err, "writing result files")
	}

	log.WithFields(logrus.Fields{"images": len(raw), "dir": cfg.ResultsDir}).Info("🔄 Converted detector output")
	return nil
}

func splitClasses(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "PASCAL VOC style mean average precision evaluation.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(
			os.Stderr,
			"  %s -config ./eval.yaml\n",
			filepath.Base(os.Args[0]),
		)
		fmt.Fprintf(
			os.Stderr,
			"  %s -imageset ./test.txt -annotations ./Annotations -format voc -classes person,car -results ./out\n",
			filepath.Base(os.Args[0]),
		)
		fmt.Fprintf(
			os.Stderr,
			"  %s -config ./eval.yaml -boxes ./detections.json -normalized -sentinels include\n",
			filepath.Base(os.Args[0]),
		)
	}
}
