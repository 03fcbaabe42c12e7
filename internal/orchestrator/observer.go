package orchestrator

import (
	"go.uber.org/zap"

	"github.com/valpere/transqc/internal/detector"
)

// LowQualityWarning describes a delivered translation whose overall score
// fell below the configured threshold.
type LowQualityWarning struct {
	Key              string
	Grade            string
	Overall          float64
	Issues           []string
	DetectedLanguage detector.Language
}

// Observer receives the events a batch run reports but does not act on.
type Observer interface {
	LowQuality(w LowQualityWarning)
	LanguageMismatch(key string, err error)
	CountMismatch(requested, returned int)
}

type NopObserver struct{}

func (NopObserver) LowQuality(LowQualityWarning)   {}
func (NopObserver) LanguageMismatch(string, error) {}
func (NopObserver) CountMismatch(int, int)         {}

type logObserver struct {
	logger *zap.Logger
}

// NewLogObserver reports every event as a structured warning.
func NewLogObserver(logger *zap.Logger) Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logObserver{logger: logger}
}

func (o *logObserver) LowQuality(w LowQualityWarning) {
	o.logger.Warn("low quality translation",
		zap.String("key", w.Key),
		zap.String("grade", w.Grade),
		zap.Float64("overall", w.Overall),
		zap.Strings("issues", w.Issues),
		zap.String("detected_language", string(w.DetectedLanguage)),
	)
}

func (o *logObserver) LanguageMismatch(key string, err error) {
	o.logger.Warn("translation not in target language",
		zap.String("key", key),
		zap.Error(err),
	)
}

func (o *logObserver) CountMismatch(requested, returned int) {
	o.logger.Warn("provider returned a different number of translations",
		zap.Int("requested", requested),
		zap.Int("returned", returned),
	)
}
