package proxy

import (
	"net/http"
	"strconv"

	"golang.org/x/net/http/httpguts"
)

// writeNotFound implements spec.md §4.5: a 404 whose body is the
// textual representation of the status ("404 Not Found"), no extra
// headers beyond what the body requires.
func writeNotFound(w http.ResponseWriter) {
	body := strconv.Itoa(http.StatusNotFound) + " " + http.StatusText(http.StatusNotFound)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(body))
}

// writeRedirect implements spec.md §4.4: a 301 to
// "https://" + host + pathAndQuery, empty body, scheme hard-coded and
// port never rewritten (spec.md §9 Open Question 2, decided to keep
// the literal behavior). If the assembled Location value isn't a
// valid header field value, this is a connection-level failure per
// spec.md §4.4 — realized as http.ErrAbortHandler, Go's idiom for
// "stop serving this connection, write nothing further."
func writeRedirect(w http.ResponseWriter, r *http.Request, host string) {
	location := "https://" + host + pathAndQuery(r.URL)

	if !httpguts.ValidHeaderFieldValue(location) {
		panic(http.ErrAbortHandler)
	}

	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusMovedPermanently)
}
