package scanner

import (
	"github.com/charmbracelet/log"
)

/*
Severity ranks a finding. The scale is ordered so the blocking decision can
compare against a threshold.
*/
type Severity int

const (
	SeverityNone Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "none"
	}
}

/*
Finding is a single detector hit: which rule fired, how severe it is, and a
hint at where in the input it matched.
*/
type Finding struct {
	RuleID   string   `json:"rule_id"`
	Family   string   `json:"family"`
	Severity Severity `json:"severity"`
	Location string   `json:"location"`
}

/*
Metadata is the structured, untrusted descriptive text scanned alongside the
payload. Dimensions carries the locator's declared vector width so the
malformed-vector detector can cross-check the payload.
*/
type Metadata struct {
	DisplayName string
	Tags        []string
	Comment     string
	Dimensions  int
}

/*
Verdict is the outcome of one scan. It is immutable once produced and is
recomputed fresh for every scan.
*/
type Verdict struct {
	Passed   bool      `json:"passed"`
	Findings []Finding `json:"findings"`
}

/*
HighestSeverity is the maximum severity over all findings, or none.
*/
func (v Verdict) HighestSeverity() Severity {
	highest := SeverityNone

	for _, finding := range v.Findings {
		if finding.Severity > highest {
			highest = finding.Severity
		}
	}

	return highest
}

/*
Detector inspects metadata and payload and yields zero or more findings.
Implementations must be side-effect-free and bounded in time by input size.
*/
type Detector interface {
	Family() string
	Detect(meta Metadata, payload []byte) []Finding
}

/*
Scanner runs a registered, ordered list of detectors over shard metadata and
payload. Adding a detector family never requires touching the assimilation
engine.
*/
type Scanner struct {
	detectors []Detector

	// warningFamilyLimit is the number of distinct families allowed to
	// raise warnings before the compounding rule fails the scan.
	warningFamilyLimit int
}

/*
Option configures a Scanner.
*/
type Option func(*Scanner)

/*
WithWarningFamilyLimit overrides how many distinct detector families may
raise warning-level findings before the verdict fails.
*/
func WithWarningFamilyLimit(limit int) Option {
	return func(s *Scanner) {
		s.warningFamilyLimit = limit
	}
}

/*
WithDetectors replaces the default detector set.
*/
func WithDetectors(detectors ...Detector) Option {
	return func(s *Scanner) {
		s.detectors = detectors
	}
}

/*
New builds a Scanner with the default detector families: prompt injection,
code execution, exfiltration, credential theft and malformed vectors.
*/
func New(opts ...Option) *Scanner {
	s := &Scanner{
		detectors: []Detector{
			newInjectionDetector(),
			newCodeExecDetector(),
			newExfiltrationDetector(),
			newCredentialDetector(),
			newVectorDetector(),
		},
		warningFamilyLimit: 2,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

/*
Register appends a detector after the defaults. Registration order is scan
order, which keeps verdicts deterministic.
*/
func (s *Scanner) Register(detector Detector) {
	s.detectors = append(s.detectors, detector)
}

/*
Scan runs every detector over the input and folds the findings into a
verdict. The scan fails when any finding is critical, or when warnings
accumulate across more distinct families than the configured limit. Scanning
is synchronous, deterministic and never touches the network.
*/
func (s *Scanner) Scan(meta Metadata, payload []byte) Verdict {
	var findings []Finding
	warningFamilies := map[string]bool{}

	for _, detector := range s.detectors {
		for _, finding := range detector.Detect(meta, payload) {
			findings = append(findings, finding)

			if finding.Severity == SeverityWarning {
				warningFamilies[finding.Family] = true
			}
		}
	}

	verdict := Verdict{Findings: findings}
	verdict.Passed = verdict.HighestSeverity() < SeverityCritical &&
		len(warningFamilies) <= s.warningFamilyLimit

	if !verdict.Passed {
		log.Warn("scan failed",
			"findings", len(findings),
			"highest", verdict.HighestSeverity().String(),
			"warning_families", len(warningFamilies),
		)
	}

	return verdict
}
