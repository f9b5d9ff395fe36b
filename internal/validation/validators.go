// Package validation provides defense-in-depth checks for data arriving at
// the ingestion front, beyond the struct tags go-playground/validator
// already enforces (spec §6). These catch malformed or hostile string
// content before it reaches the span store or a log line.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/archlens/archlens/pkg/spanmodel"
)

const (
	// MaxSpanPayloadBytes bounds a single ingested span's JSON encoding,
	// independent of the batch-level cap enforced by the ingest handler.
	MaxSpanPayloadBytes = 65536

	maxSanitizedLogLength = 200
)

// structValidator enforces the `validate` struct tags on spanmodel.Span
// (required fields, the kind enum, latency non-negativity). It holds no
// per-call state and is safe for concurrent use, so one instance is shared
// process-wide.
var structValidator = validator.New()

var unsafePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bUNION\b.*\bSELECT\b`),
	regexp.MustCompile(`(?i)\bDROP\s+TABLE\b`),
	regexp.MustCompile(`(?i)\bDELETE\s+FROM\b`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`;`),
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`'`),
}

var controlCharPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// ValidateStringInput rejects field values over maxLen, containing
// SQL/script-injection markers, or containing control characters other than
// tab, newline and carriage return.
func ValidateStringInput(field, value string, maxLen int) error {
	if len(value) > maxLen {
		return fmt.Errorf("%s must be %d characters or less", field, maxLen)
	}
	for _, p := range unsafePatterns {
		if p.MatchString(value) {
			return fmt.Errorf("%s contains potentially unsafe characters", field)
		}
	}
	if controlCharPattern.MatchString(value) {
		return fmt.Errorf("%s contains invalid control characters", field)
	}
	return nil
}

// ValidateSpan checks a span against spec §3/§6's full invariant set. The
// hand-written checks below run first so callers get the specific,
// human-readable message for the violations spec §6 calls out by name;
// structValidator.Struct catches anything left over — most notably a
// required field (trace_id, span_id, ...) being empty, which has no
// dedicated check of its own.
func ValidateSpan(s *spanmodel.Span) error {
	if err := ValidateStringInput("tenant_id", s.TenantID, 128); err != nil {
		return err
	}
	if err := ValidateStringInput("service_name", s.ServiceName, 256); err != nil {
		return err
	}
	if err := ValidateStringInput("operation", s.Operation, 256); err != nil {
		return err
	}
	if s.Downstream != "" {
		if err := ValidateStringInput("downstream", s.Downstream, 256); err != nil {
			return err
		}
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("kind must be one of server, client, internal")
	}
	if s.EndTime.Before(s.StartTime) {
		return fmt.Errorf("end_time must not precede start_time")
	}
	if s.LatencyMs < 0 {
		return fmt.Errorf("latency_ms must be non-negative")
	}
	if err := structValidator.Struct(s); err != nil {
		return fmt.Errorf("span failed validation: %w", err)
	}
	return nil
}

// ValidatePayloadSize rejects a span payload larger than MaxSpanPayloadBytes,
// letting the ingest handler shed oversized requests before unmarshalling.
func ValidatePayloadSize(raw []byte) error {
	if len(raw) > MaxSpanPayloadBytes {
		return fmt.Errorf("span payload of %d bytes exceeds the %d byte limit", len(raw), MaxSpanPayloadBytes)
	}
	return nil
}

// ValidateTimeRange checks a human-entered duration string like "1h", "24h",
// "7d", "30d", "60m" used by read-surface query parameters (spec §5).
func ValidateTimeRange(timeRange string) error {
	if err := ValidateStringInput("time_range", timeRange, 16); err != nil {
		return err
	}
	matched, _ := regexp.MatchString(`^\d+(m|h|d)$`, timeRange)
	if !matched {
		return fmt.Errorf("time_range must be in format like 1h, 24h, 7d, 30d, 60m")
	}
	return nil
}

// ValidateWindowMinutes bounds a read-surface lookback window to one week.
func ValidateWindowMinutes(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("window_minutes must be greater than 0")
	}
	if minutes > 7*24*60 {
		return fmt.Errorf("window_minutes must be 7 days (10080 minutes) or less")
	}
	return nil
}

// ValidateLimit bounds a read-surface result-set size.
func ValidateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}
	if limit > 10000 {
		return fmt.Errorf("limit must be 10000 or less")
	}
	return nil
}

// SanitizeForLogging replaces control characters with '?' and truncates to
// maxSanitizedLogLength so an ingested string can never corrupt or flood a
// structured log line.
func SanitizeForLogging(input string) string {
	sanitized := controlCharPattern.ReplaceAllString(input, "?")
	if len(sanitized) > maxSanitizedLogLength {
		sanitized = sanitized[:maxSanitizedLogLength-3] + "..."
	}
	return sanitized
}

// durationFromTimeRange parses a ValidateTimeRange-shaped string into a
// time.Duration, used by read-surface handlers once the string has passed
// validation.
func durationFromTimeRange(timeRange string) (time.Duration, error) {
	if err := ValidateTimeRange(timeRange); err != nil {
		return 0, err
	}
	unit := timeRange[len(timeRange)-1]
	numeric := timeRange[:len(timeRange)-1]
	var n int
	if _, err := fmt.Sscanf(numeric, "%d", &n); err != nil {
		return 0, fmt.Errorf("time_range %q is not numeric", timeRange)
	}
	switch unit {
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unsupported time_range unit %q", string(unit))
	}
}

// normalizeServiceName trims surrounding whitespace so "api " and "api" are
// treated as the same graph node (spec §4.B identity rule).
func normalizeServiceName(name string) string {
	return strings.TrimSpace(name)
}
