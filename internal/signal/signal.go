// Package signal derives structural complexity signals from a scope item's
// free-text detail. Extraction is a pure function of the text and is
// recomputed on every pass rather than cached.
package signal

import (
	"regexp"
	"strconv"
	"strings"
)

// Set holds the signals extracted from one item's detail text.
type Set struct {
	Fields        int  `json:"fields"`
	Integrations  int  `json:"integrations"`
	WorkflowSteps int  `json:"workflow_steps"`
	HasUpload     bool `json:"has_upload"`
	HasAuthRole   bool `json:"has_auth_role"`
	Create        bool `json:"create"`
	Read          bool `json:"read"`
	Update        bool `json:"update"`
	Delete        bool `json:"delete"`
}

// CRUDCount returns how many of the four CRUD flags are set.
func (s Set) CRUDCount() int {
	n := 0
	for _, f := range []bool{s.Create, s.Read, s.Update, s.Delete} {
		if f {
			n++
		}
	}
	return n
}

var (
	reFieldCount       = regexp.MustCompile(`(?i)\b(\d+)\s*(?:input\s+|form\s+|data\s+)?(?:fields?|columns?|attributes?)\b`)
	reIntegrationCount = regexp.MustCompile(`(?i)\b(\d+)\s*(?:external\s+|third[- ]party\s+)?(?:integrations?|apis?|systems?|endpoints?)\b`)
	reStepCount        = regexp.MustCompile(`(?i)\b(\d+)\s*(?:workflow\s+|approval\s+|process\s+)?(?:steps?|stages?)\b`)

	fieldWords       = []string{"field", "column", "attribute"}
	integrationWords = []string{"integration", "integrate", "webhook", "api call", "external api", "third party", "third-party", "sftp", "erp", "crm", "payment gateway", "sso"}
	stepWords        = []string{"step", "stage", "approval", "escalation"}
	uploadWords      = []string{"upload", "attachment", "file import", "import file", "document scan", "bulk import"}
	authWords        = []string{"login", "log in", "authentication", "authorization", "role", "permission", "access control", "oauth", "sso"}

	createWords = []string{"create", "add new", "insert", "register", "submit new"}
	readWords   = []string{"read", "view", "list", "display", "search", "browse", "lookup"}
	updateWords = []string{"update", "edit", "modify", "change existing", "revise"}
	deleteWords = []string{"delete", "remove", "archive", "deactivate"}
)

// Extract scans detail text for signals. Explicit counts ("12 fields",
// "3 integrations", "5 approval steps") dominate; when no number is
// written, keyword occurrences stand in for the count. The literal token
// "CRUD" raises all four operation flags at once.
func Extract(detail string) Set {
	lower := strings.ToLower(detail)

	s := Set{
		Fields:        countSignal(detail, lower, reFieldCount, fieldWords),
		Integrations:  countSignal(detail, lower, reIntegrationCount, integrationWords),
		WorkflowSteps: countSignal(detail, lower, reStepCount, stepWords),
		HasUpload:     containsAny(lower, uploadWords),
		HasAuthRole:   containsAny(lower, authWords),
	}

	if strings.Contains(lower, "crud") {
		s.Create, s.Read, s.Update, s.Delete = true, true, true, true
		return s
	}
	s.Create = containsAny(lower, createWords)
	s.Read = containsAny(lower, readWords)
	s.Update = containsAny(lower, updateWords)
	s.Delete = containsAny(lower, deleteWords)
	return s
}

// countSignal prefers the largest explicit numeric mention; otherwise it
// counts keyword occurrences.
func countSignal(detail, lower string, re *regexp.Regexp, words []string) int {
	best := 0
	explicit := false
	for _, m := range re.FindAllStringSubmatch(detail, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		explicit = true
		if n > best {
			best = n
		}
	}
	if explicit {
		return best
	}
	total := 0
	for _, w := range words {
		total += strings.Count(lower, w)
	}
	return total
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
