package wardrive

import (
	"fmt"

	"github.com/irctrakz/ghostcap/pkg/core"
	"github.com/irctrakz/ghostcap/pkg/logging"
	"github.com/sirupsen/logrus"
)

// Logger screens each sighting and writes the plausible ones.
type Logger struct {
	validator *Validator
	csv       *CSVEncoder
	warn      Sampler
	info      Sampler
	log       *logrus.Entry
}

// LoggerConfig holds the samplers a Logger uses. Nil samplers never sample.
type LoggerConfig struct {
	// Warn gates warnings for implausible fixes.
	Warn Sampler

	// Info gates the per-row progress line.
	Info Sampler
}

// NewLogger wires a validator to enc.
func NewLogger(enc *CSVEncoder, cfg LoggerConfig) *Logger {
	l := &Logger{
		validator: NewValidator(),
		csv:       enc,
		warn:      cfg.Warn,
		info:      cfg.Info,
		log:       logging.Tag(logging.TagGPS),
	}
	if l.warn == nil {
		l.warn = Never{}
	}
	if l.info == nil {
		l.info = Never{}
	}
	return l
}

// Log validates and records one sighting. It returns ErrInvalidArgument
// when there is no usable GPS fix; other implausible input is dropped and
// reported as nil.
func (l *Logger) Log(fix *Fix, ap Observation) error {
	v := l.validator.Validate(fix, ap)
	switch v.Action {
	case Accept:
	case SkipWithWarning:
		if l.warn.Sample() {
			l.warnFix(v.Reason, fix)
		}
		return nil
	default:
		if v.Reason == ReasonNoFix {
			return fmt.Errorf("%w: %s", core.ErrInvalidArgument, v.Reason)
		}
		return nil
	}

	if err := l.csv.WriteRecord(fix, ap); err != nil {
		l.log.WithError(err).Error("Failed to write wardriving data to CSV buffer")
		return err
	}
	if l.info.Sample() {
		l.log.WithField("satellites", fix.SatsInView).Info("Wrote to buffer")
	}
	return nil
}

func (l *Logger) warnFix(reason Reason, fix *Fix) {
	fields := logrus.Fields{}
	switch reason {
	case ReasonDate:
		fields["date"] = fmt.Sprintf("%04d-%02d-%02d", 2000+fix.Date.Year, fix.Date.Month, fix.Date.Day)
	case ReasonTime:
		fields["time"] = fmt.Sprintf("%02d:%02d:%02d", fix.Time.Hour, fix.Time.Minute, fix.Time.Second)
	case ReasonCoordinates:
		fields["lat"] = fix.Latitude
		fields["lon"] = fix.Longitude
	case ReasonSpeed:
		fields["speed"] = fix.Speed
	case ReasonDOP:
		fields["hdop"] = fix.DOPH
		fields["pdop"] = fix.DOPP
		fields["vdop"] = fix.DOPV
	}
	l.log.WithFields(fields).Warnf("Warning: %s", reason)
}

// Validator returns the session validator.
func (l *Logger) Validator() *Validator { return l.validator }
