package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// SheetsAuthConfig configures the interactive OAuth2 flow that produces a
// read-only refresh token for SheetsLoader.
type SheetsAuthConfig struct {
	ClientID     string
	ClientSecret string
	CallbackAddr string        // local listener for the redirect
	Timeout      time.Duration // how long to wait for the browser
}

const callbackPath = "/callback"

// AuthorizeSheets runs the OAuth2 authorization-code flow. open receives the
// consent URL; the user's browser is redirected back to CallbackAddr.
func AuthorizeSheets(ctx context.Context, config SheetsAuthConfig, open func(url string)) (*oauth2.Token, error) {
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, errors.New("client id and client secret are required")
	}
	if config.CallbackAddr == "" {
		config.CallbackAddr = "localhost:8085"
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}

	listener, err := net.Listen("tcp", config.CallbackAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://" + listener.Addr().String() + callbackPath,
		Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
	}

	state := uuid.NewString()
	codes := make(chan string, 1)
	errs := make(chan error, 1)

	server := &http.Server{
		Handler:           callbackRouter(state, codes, errs),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errs <- fmt.Errorf("callback server failed: %w", serveErr)
		}
	}()
	defer func() {
		if shutdownErr := server.Shutdown(context.Background()); shutdownErr != nil {
			slog.Warn("Error shutting down callback server", "error", shutdownErr)
		}
	}()

	open(oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	var code string
	select {
	case code = <-codes:
		slog.Info("Received authorization code")
	case err := <-errs:
		return nil, err
	case <-time.After(config.Timeout):
		return nil, fmt.Errorf("authentication timeout: no response within %s", config.Timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, errors.New("google did not return a refresh token")
	}
	return token, nil
}

// callbackRouter accepts one redirect carrying the expected state and
// forwards its code or error.
func callbackRouter(state string, codes chan<- string, errs chan<- error) http.Handler {
	r := chi.NewRouter()
	r.Get(callbackPath, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()

		switch {
		case q.Get("state") != state:
			http.Error(w, "Authentication failed: state mismatch.", http.StatusBadRequest)
			return
		case q.Get("error") != "":
			sendOnce(errs, fmt.Errorf("authorization denied: %s", q.Get("error")))
			http.Error(w, "Authentication failed. You can close this window.", http.StatusForbidden)
			return
		case q.Get("code") == "":
			sendOnce(errs, errors.New("no authorization code received"))
			http.Error(w, "Authentication failed: no authorization code.", http.StatusBadRequest)
			return
		}

		sendOnce(codes, q.Get("code"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, `<html><body><h1>Authentication Successful!</h1><p>You can close this window and return to the terminal.</p></body></html>`)
	})
	return r
}

func sendOnce[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}
