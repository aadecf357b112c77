package httpx

import (
	"fmt"
	"net/http"

	"prodi/pkg/contextx"
)

const (
	headerAPIKey         = "apikey"
	headerAuthorization  = "Authorization"
	headerIdentityWallet = "X-Prodi-Wallet"
)

// APIKeyRoundTripper authenticates requests to a hosted table store with a
// static project key and forwards the wallet of the current request, when
// there is one, as an identity header for row-level policies.
type APIKeyRoundTripper struct {
	next   http.RoundTripper
	apiKey string
}

func NewAPIKeyRoundTripper(
	next http.RoundTripper,
	apiKey string,
) APIKeyRoundTripper {
	return APIKeyRoundTripper{
		next:   next,
		apiKey: apiKey,
	}
}

func (rt APIKeyRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	req.Header.Set(headerAPIKey, rt.apiKey)
	req.Header.Set(headerAuthorization, "Bearer "+rt.apiKey)

	if wallet, err := contextx.WalletFromContext(req.Context()); err == nil {
		req.Header.Set(headerIdentityWallet, wallet.String())
	}

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	return resp, nil
}
