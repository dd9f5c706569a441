package scanner

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Detector families.
const (
	FamilyInjection       = "prompt-injection"
	FamilyCodeExec        = "code-execution"
	FamilyExfiltration    = "exfiltration"
	FamilyCredentialTheft = "credential-theft"
	FamilyVector          = "malformed-vector"
)

/*
rule is one pattern within a detector family. Either phrase (matched
case-insensitively as a substring) or pattern (an RE2 regexp, so matching is
linear in input size with no backtracking blowup) is set.
*/
type rule struct {
	id       string
	severity Severity
	phrase   string
	pattern  *regexp.Regexp
}

/*
patternDetector scans the metadata fields and, when the payload is
introspectable text, the payload itself, against its rule set.
*/
type patternDetector struct {
	family string
	rules  []rule
}

func (d *patternDetector) Family() string {
	return d.family
}

func (d *patternDetector) Detect(meta Metadata, payload []byte) []Finding {
	var findings []Finding

	surfaces := []struct {
		location string
		text     string
	}{
		{"metadata:display_name", meta.DisplayName},
		{"metadata:tags", strings.Join(meta.Tags, " ")},
		{"metadata:comment", meta.Comment},
	}

	if utf8.Valid(payload) {
		surfaces = append(surfaces, struct {
			location string
			text     string
		}{"payload", string(payload)})
	}

	for _, surface := range surfaces {
		if surface.text == "" {
			continue
		}

		lowered := strings.ToLower(surface.text)

		for _, rule := range d.rules {
			matched := false

			if rule.phrase != "" {
				matched = strings.Contains(lowered, rule.phrase)
			} else if rule.pattern != nil {
				matched = rule.pattern.MatchString(surface.text)
			}

			if matched {
				findings = append(findings, Finding{
					RuleID:   rule.id,
					Family:   d.family,
					Severity: rule.severity,
					Location: surface.location,
				})
			}
		}
	}

	return findings
}

/*
newInjectionDetector matches phrasing that tries to override the consuming
agent's instructions or smuggle in fake role delimiters.
*/
func newInjectionDetector() Detector {
	return &patternDetector{
		family: FamilyInjection,
		rules: []rule{
			{id: "inj.override", severity: SeverityCritical, phrase: "ignore previous instructions"},
			{id: "inj.override_all", severity: SeverityCritical, phrase: "ignore all previous instructions"},
			{id: "inj.disregard", severity: SeverityCritical, phrase: "disregard prior instructions"},
			{id: "inj.new_instructions", severity: SeverityCritical, phrase: "your new instructions are"},
			{id: "inj.role_system", severity: SeverityWarning, phrase: "[system]"},
			{id: "inj.role_heading", severity: SeverityWarning, phrase: "### system"},
			{id: "inj.chatml", severity: SeverityCritical, phrase: "<|im_start|>"},
			{id: "inj.you_are_now", severity: SeverityWarning, phrase: "you are now"},
		},
	}
}

/*
newCodeExecDetector matches constructs associated with dynamic code
evaluation or dynamic import hiding inside shard data.
*/
func newCodeExecDetector() Detector {
	return &patternDetector{
		family: FamilyCodeExec,
		rules: []rule{
			{id: "exec.eval", severity: SeverityCritical, phrase: "eval("},
			{id: "exec.exec", severity: SeverityCritical, phrase: "exec("},
			{id: "exec.dunder_import", severity: SeverityCritical, phrase: "__import__"},
			{id: "exec.importlib", severity: SeverityWarning, phrase: "importlib"},
			{id: "exec.subprocess", severity: SeverityCritical, phrase: "subprocess."},
			{id: "exec.os_system", severity: SeverityCritical, phrase: "os.system"},
			{id: "exec.child_process", severity: SeverityCritical, phrase: "child_process"},
			{id: "exec.new_function", severity: SeverityWarning, phrase: "new function("},
			{id: "exec.pickle", severity: SeverityCritical, phrase: "pickle.loads"},
		},
	}
}

/*
newExfiltrationDetector matches outbound-network constructs embedded in
otherwise-inert data.
*/
func newExfiltrationDetector() Detector {
	return &patternDetector{
		family: FamilyExfiltration,
		rules: []rule{
			{id: "exfil.requests", severity: SeverityCritical, phrase: "requests.post"},
			{id: "exfil.urllib", severity: SeverityWarning, phrase: "urllib.request"},
			{id: "exfil.fetch", severity: SeverityWarning, phrase: "fetch("},
			{id: "exfil.xhr", severity: SeverityWarning, phrase: "xmlhttprequest"},
			{id: "exfil.socket", severity: SeverityCritical, phrase: "socket.connect"},
			{id: "exfil.net_dial", severity: SeverityCritical, phrase: "net.dial"},
			{id: "exfil.curl", severity: SeverityWarning, pattern: regexp.MustCompile(`\bcurl\s+-`)},
			{id: "exfil.webhook", severity: SeverityCritical, pattern: regexp.MustCompile(`https?://[^\s]*webhook[^\s]*`)},
		},
	}
}

/*
newCredentialDetector matches credential-shaped strings and environment
variable access idioms.
*/
func newCredentialDetector() Detector {
	return &patternDetector{
		family: FamilyCredentialTheft,
		rules: []rule{
			{id: "cred.openai_key", severity: SeverityCritical, pattern: regexp.MustCompile(`\bsk-[A-Za-z0-9]{20,}\b`)},
			{id: "cred.aws_key", severity: SeverityCritical, pattern: regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
			{id: "cred.github_token", severity: SeverityCritical, pattern: regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}\b`)},
			{id: "cred.private_key_pem", severity: SeverityCritical, phrase: "-----begin rsa private key-----"},
			{id: "cred.private_key_pem_generic", severity: SeverityCritical, phrase: "-----begin private key-----"},
			{id: "cred.env_python", severity: SeverityWarning, phrase: "os.environ"},
			{id: "cred.env_node", severity: SeverityWarning, phrase: "process.env"},
			{id: "cred.env_go", severity: SeverityWarning, phrase: "os.getenv"},
		},
	}
}

/*
vectorDetector validates payloads that declare numeric vector content: every
value must be finite and every row must match the declared dimensionality.
It only engages when the metadata declares dimensions and the payload parses
as a JSON vector batch.
*/
type vectorDetector struct{}

func newVectorDetector() Detector {
	return &vectorDetector{}
}

func (d *vectorDetector) Family() string {
	return FamilyVector
}

func (d *vectorDetector) Detect(meta Metadata, payload []byte) []Finding {
	if meta.Dimensions <= 0 || len(payload) == 0 || payload[0] != '[' {
		return nil
	}

	var findings []Finding

	// NaN and Infinity are not valid JSON, so a compliant parse can never
	// produce them. Catch the literal tokens before parsing.
	text := string(payload)
	for _, token := range []string{"NaN", "Infinity", "-Infinity"} {
		if strings.Contains(text, token) {
			findings = append(findings, Finding{
				RuleID:   "vec.non_finite_token",
				Family:   FamilyVector,
				Severity: SeverityCritical,
				Location: "payload",
			})
			break
		}
	}

	rows, ok := parseVectors(payload)

	if !ok {
		return findings
	}

	for i, row := range rows {
		if len(row) != meta.Dimensions {
			findings = append(findings, Finding{
				RuleID:   "vec.dimension_mismatch",
				Family:   FamilyVector,
				Severity: SeverityCritical,
				Location: fmt.Sprintf("payload:vector[%d]", i),
			})
		}

		for _, value := range row {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				findings = append(findings, Finding{
					RuleID:   "vec.non_finite",
					Family:   FamilyVector,
					Severity: SeverityCritical,
					Location: fmt.Sprintf("payload:vector[%d]", i),
				})
				break
			}
		}
	}

	return findings
}

/*
parseVectors accepts either a batch of vectors or a single vector.
*/
func parseVectors(payload []byte) ([][]float64, bool) {
	var batch [][]float64

	if err := json.Unmarshal(payload, &batch); err == nil {
		return batch, true
	}

	var single []float64

	if err := json.Unmarshal(payload, &single); err == nil {
		return [][]float64{single}, true
	}

	return nil, false
}
