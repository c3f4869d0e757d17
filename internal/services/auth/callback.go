package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// callbackPage reads the token fragment the platform redirected to and
// posts it back to the listener. Fragments never reach the server on their
// own.
const callbackPage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>twcatele login</title></head>
<body style="font-family: sans-serif; margin: 3em;">
<p id="status">Completing sign-in…</p>
<script>
fetch("/callback", {
  method: "POST",
  headers: {"Content-Type": "application/json"},
  body: JSON.stringify({fragment: window.location.hash.substring(1)})
}).then(function (r) { return r.text(); })
  .then(function (t) { document.getElementById("status").textContent = t; })
  .catch(function (e) { document.getElementById("status").textContent = "Sign-in failed: " + e; });
history.replaceState(null, "", window.location.pathname);
</script>
</body>
</html>
`

// CallbackResult is the outcome of one redirect.
type CallbackResult struct {
	Token string
	Err   error
}

type callbackBody struct {
	Fragment string `json:"fragment"`
}

// NewCallbackHandler serves the redirect page on GET / and accepts the
// fragment on POST /callback. Posts that are not application/json or whose
// fragment lacks state are refused and never delivered. The first accepted
// result is delivered on results; later posts are answered but dropped.
func NewCallbackHandler(results chan<- CallbackResult, state string, allowedOrigins ...string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, callbackPage)
	}).Methods(http.MethodGet)

	r.HandleFunc("/callback", func(w http.ResponseWriter, req *http.Request) {
		// A JSON post from another origin needs a preflight, which cors refuses.
		if mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
			http.Error(w, "callback body must be application/json", http.StatusUnsupportedMediaType)
			return
		}

		var body callbackBody
		if err := json.NewDecoder(io.LimitReader(req.Body, 64<<10)).Decode(&body); err != nil {
			http.Error(w, "invalid callback body", http.StatusBadRequest)
			return
		}

		token, err := ParseFragment(body.Fragment, state)
		if errors.Is(err, ErrStateMismatch) {
			http.Error(w, "Sign-in was not started by this login.", http.StatusForbidden)
			return
		}
		select {
		case results <- CallbackResult{Token: token, Err: err}:
		default:
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, err.Error())
			return
		}
		_, _ = io.WriteString(w, "Signed in. You can close this window and return to the terminal.")
	}).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

// CallbackServer is the local listener the OAuth redirect lands on.
type CallbackServer struct {
	listener net.Listener
	server   *http.Server
	results  chan CallbackResult
	state    string
}

// StartCallbackServer listens on addr (e.g. "127.0.0.1:8083").
func StartCallbackServer(addr string, allowedOrigins ...string) (*CallbackServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to listen on %s: %w", addr, err)
	}

	results := make(chan CallbackResult, 1)
	state := uuid.NewString()
	s := &CallbackServer{
		listener: ln,
		results:  results,
		state:    state,
		server: &http.Server{
			Handler:           NewCallbackHandler(results, state, allowedOrigins...),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case results <- CallbackResult{Err: fmt.Errorf("auth: callback listener failed: %w", err)}:
			default:
			}
		}
	}()
	return s, nil
}

// RedirectURI is the URI to register for the application id.
func (s *CallbackServer) RedirectURI() string {
	return "http://" + s.listener.Addr().String() + "/"
}

// State is the value to send as the authorize request's state.
func (s *CallbackServer) State() string {
	return s.state
}

// Wait blocks until a redirect arrives or ctx is done.
func (s *CallbackServer) Wait(ctx context.Context) (string, error) {
	select {
	case res := <-s.results:
		return res.Token, res.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close shuts the listener down.
func (s *CallbackServer) Close(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
