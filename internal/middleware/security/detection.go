package security

import (
	"net/http"
	"net/url"
	"strings"

	"prodboard/internal/log"
	"prodboard/internal/metrics"
)

// Reasons a request is flagged, used as the metrics label.
const (
	ReasonAttackPattern = "attack_pattern"
	ReasonScanner       = "scanner_agent"
	ReasonMethod        = "unusual_method"
	ReasonURLLength     = "url_length"
	ReasonForwardedHops = "forwarded_hops"
)

const (
	maxURLLength     = 2048
	maxForwardedHops = 5
)

var (
	attackPatterns = []string{
		"../", "..\\", ".env", ".git", ".ssh", "etc/passwd",
		"wp-admin", "phpmyadmin", "admin.php", "config.php", "cmd.exe",
		"<script", "javascript:", "eval(", "union select", "information_schema",
	}

	scannerAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab", "wpscan",
	}

	unusualMethods = map[string]bool{
		"TRACE": true, "TRACK": true, "DEBUG": true, "CONNECT": true,
	}
)

// Detector flags requests that look like path traversal, injection or
// scanner traffic. It never blocks; flagged requests are counted and logged.
type Detector struct {
	clientIP func(*http.Request) string
}

// NewDetector returns a Detector. clientIP may be nil, in which case the
// peer address is logged.
func NewDetector(clientIP func(*http.Request) string) *Detector {
	if clientIP == nil {
		clientIP = func(r *http.Request) string { return r.RemoteAddr }
	}
	return &Detector{clientIP: clientIP}
}

// Detect returns the reason r is suspicious, or "" when it is not.
func (d *Detector) Detect(r *http.Request) string {
	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}
	target := strings.ToLower(r.URL.Path + "?" + query)
	for _, p := range attackPatterns {
		if strings.Contains(target, p) {
			return ReasonAttackPattern
		}
	}

	agent := strings.ToLower(r.UserAgent())
	for _, a := range scannerAgents {
		if strings.Contains(agent, a) {
			return ReasonScanner
		}
	}

	if unusualMethods[r.Method] {
		return ReasonMethod
	}
	if len(r.URL.String()) > maxURLLength {
		return ReasonURLLength
	}
	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > maxForwardedHops {
		return ReasonForwardedHops
	}
	return ""
}

func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := d.Detect(r); reason != "" {
			metrics.SuspiciousRequests.WithLabelValues(reason).Inc()
			fields := log.NewFields().
				WithClientIP(d.clientIP(r)).
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent(), r.Referer())
			fields["reason"] = reason
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request", fields.ToSlice()...)
		}
		next.ServeHTTP(w, r)
	})
}
