// internal/alexa/verify.go
//
// Request verification for the Alexa webhook.
// Responsibilities:
//   - Validate the SignatureCertChainUrl header (https, s3.amazonaws.com, /echo.api/, port 443).
//   - Download, parse and cache the signing certificate chain.
//   - Check the chain against trust roots and the echo-api.amazon.com SAN.
//   - Verify the body signature (Signature-256, falling back to Signature/SHA-1).
//   - Reject requests whose timestamp is outside the tolerance window.

package alexa

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/sevenboom/internal/store"
)

const (
	HeaderCertChainURL = "SignatureCertChainUrl"
	HeaderSignature    = "Signature"
	HeaderSignature256 = "Signature-256"

	certHost      = "s3.amazonaws.com"
	certPathRoot  = "/echo.api/"
	echoSAN       = "echo-api.amazon.com"
	maxBodyBytes  = 1 << 20
	maxChainBytes = 1 << 16

	DefaultTolerance = 150 * time.Second
)

var (
	ErrMissingSignature = errors.New("missing signature headers")
	ErrCertURL          = errors.New("invalid certificate chain url")
	ErrCertificate      = errors.New("invalid signing certificate")
	ErrSignature        = errors.New("signature mismatch")
	ErrTimestamp        = errors.New("request timestamp outside tolerance")
)

// FetchFunc downloads a PEM certificate chain.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Verifier authenticates inbound platform requests.
type Verifier struct {
	certs     store.Store
	fetch     FetchFunc
	roots     *x509.CertPool // nil means system roots
	tolerance time.Duration
	now       func() time.Time
	onFailure func(error)
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

func WithRoots(p *x509.CertPool) VerifierOption     { return func(v *Verifier) { v.roots = p } }
func WithClock(now func() time.Time) VerifierOption { return func(v *Verifier) { v.now = now } }
func WithFetcher(f FetchFunc) VerifierOption        { return func(v *Verifier) { v.fetch = f } }
func WithFailureHook(f func(error)) VerifierOption  { return func(v *Verifier) { v.onFailure = f } }

func WithTolerance(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		if d > 0 {
			v.tolerance = d
		}
	}
}

// WithHTTPClient fetches certificate chains with c.
func WithHTTPClient(c *http.Client) VerifierOption {
	return func(v *Verifier) { v.fetch = httpFetcher(c) }
}

// NewVerifier constructs a Verifier caching chains in certs.
func NewVerifier(certs store.Store, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		certs:     certs,
		fetch:     httpFetcher(&http.Client{Timeout: 5 * time.Second}),
		tolerance: DefaultTolerance,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Middleware rejects unverifiable requests with 400 and restores the body for next.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		_ = r.Body.Close()
		if err == nil {
			err = v.Verify(r.Context(), r.Header, body)
		}
		if err != nil {
			if v.onFailure != nil {
				v.onFailure(err)
			}
			hlog.FromRequest(r).Warn().Err(err).Msg("alexa request verification failed")
			http.Error(w, `{"error":"`+errorCode(err)+`"}`, http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// Verify checks the signature headers and timestamp of a raw request body.
func (v *Verifier) Verify(ctx context.Context, h http.Header, body []byte) error {
	certURL := h.Get(HeaderCertChainURL)
	sig, hash := h.Get(HeaderSignature256), crypto.SHA256
	if sig == "" {
		sig, hash = h.Get(HeaderSignature), crypto.SHA1
	}
	if certURL == "" || sig == "" {
		return ErrMissingSignature
	}
	if err := ValidateCertURL(certURL); err != nil {
		return err
	}

	leaf, err := v.leaf(ctx, certURL)
	if err != nil {
		return err
	}
	if err := verifySignature(leaf, hash, sig, body); err != nil {
		return err
	}
	return v.checkTimestamp(body)
}

// ValidateCertURL applies the platform's rules for SignatureCertChainUrl.
func ValidateCertURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCertURL, err)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("%w: scheme %q", ErrCertURL, u.Scheme)
	}
	if !strings.EqualFold(u.Hostname(), certHost) {
		return fmt.Errorf("%w: host %q", ErrCertURL, u.Hostname())
	}
	if p := u.Port(); p != "" && p != "443" {
		return fmt.Errorf("%w: port %q", ErrCertURL, p)
	}
	if !strings.HasPrefix(path.Clean(u.Path), certPathRoot) {
		return fmt.Errorf("%w: path %q", ErrCertURL, u.Path)
	}
	return nil
}

// leaf returns the verified signing certificate for certURL, fetching the chain on a cache miss.
func (v *Verifier) leaf(ctx context.Context, certURL string) (*x509.Certificate, error) {
	chain, err := v.certs.Get(ctx, certURL)
	if errors.Is(err, store.ErrNotFound) {
		raw, ferr := v.fetch(ctx, certURL)
		if ferr != nil {
			return nil, fmt.Errorf("%w: fetch: %v", ErrCertificate, ferr)
		}
		if chain, err = parseChain(raw); err != nil {
			return nil, err
		}
		if err := v.certs.Save(ctx, certURL, chain); err != nil {
			return nil, fmt.Errorf("cache certificate chain: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load certificate chain: %w", err)
	}

	inter := x509.NewCertPool()
	for _, c := range chain[1:] {
		inter.AddCert(c)
	}
	leaf := chain[0]
	if _, err := leaf.Verify(x509.VerifyOptions{
		DNSName:       echoSAN,
		Intermediates: inter,
		Roots:         v.roots,
		CurrentTime:   v.now(),
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificate, err)
	}
	return leaf, nil
}

func parseChain(raw []byte) ([]*x509.Certificate, error) {
	var chain []*x509.Certificate
	for {
		var block *pem.Block
		block, raw = pem.Decode(raw)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		c, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCertificate, err)
		}
		chain = append(chain, c)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: no certificates in chain", ErrCertificate)
	}
	return chain, nil
}

func verifySignature(leaf *x509.Certificate, hash crypto.Hash, sig string, body []byte) error {
	pub, ok := leaf.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: not an RSA key", ErrCertificate)
	}
	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignature, err)
	}
	var digest []byte
	if hash == crypto.SHA256 {
		sum := sha256.Sum256(body)
		digest = sum[:]
	} else {
		sum := sha1.Sum(body)
		digest = sum[:]
	}
	if err := rsa.VerifyPKCS1v15(pub, hash, digest, raw); err != nil {
		return ErrSignature
	}
	return nil
}

func (v *Verifier) checkTimestamp(body []byte) error {
	var env struct {
		Request struct {
			Timestamp string `json:"timestamp"`
		} `json:"request"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrTimestamp, err)
	}
	ts, err := time.Parse(time.RFC3339, env.Request.Timestamp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTimestamp, err)
	}
	d := v.now().Sub(ts)
	if d < 0 {
		d = -d
	}
	if d > v.tolerance {
		return ErrTimestamp
	}
	return nil
}

func httpFetcher(c *http.Client) FetchFunc {
	return func(ctx context.Context, u string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		res, err := c.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
		}
		return io.ReadAll(io.LimitReader(res.Body, maxChainBytes))
	}
}

// errorCode maps verifier errors onto short codes for the JSON response.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrMissingSignature):
		return "missing_signature"
	case errors.Is(err, ErrCertURL):
		return "invalid_cert_url"
	case errors.Is(err, ErrCertificate):
		return "invalid_certificate"
	case errors.Is(err, ErrSignature):
		return "invalid_signature"
	case errors.Is(err, ErrTimestamp):
		return "invalid_timestamp"
	}
	return "verification_failed"
}
