package steam_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavebreaker/backend/internal/infrastructure/steam"
)

func TestOpenID_LoginURL(t *testing.T) {
	o := steam.NewOpenID(nil, "https://wavebreaker.example", "https://wavebreaker.example/auth/return")
	u, err := url.Parse(o.LoginURL())
	require.NoError(t, err)

	assert.Equal(t, "checkid_setup", u.Query().Get("openid.mode"))
	assert.Equal(t, "https://wavebreaker.example", u.Query().Get("openid.realm"))
	assert.Equal(t, "https://wavebreaker.example/auth/return", u.Query().Get("openid.return_to"))
}

func TestOpenID_Verify(t *testing.T) {
	tests := []struct {
		name        string
		claimedID   string
		isValid     bool
		wantErr     bool
		wantSteamID uint64
	}{
		{
			name:        "valid login",
			claimedID:   "https://steamcommunity.com/openid/id/76561197960287930",
			isValid:     true,
			wantSteamID: 76561197960287930,
		},
		{
			name:      "steam rejects assertion",
			claimedID: "https://steamcommunity.com/openid/id/76561197960287930",
			isValid:   false,
			wantErr:   true,
		},
		{
			name:      "unparseable claimed_id",
			claimedID: "https://steamcommunity.com/openid/id/not-a-steamid",
			isValid:   true,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "check_authentication", r.URL.Query().Get("openid.mode"))
				if tt.isValid {
					_, _ = w.Write([]byte("ns:http://specs.openid.net/auth/2.0\nis_valid:true\n"))
				} else {
					_, _ = w.Write([]byte("ns:http://specs.openid.net/auth/2.0\nis_valid:false\n"))
				}
			}))
			defer server.Close()

			o := steam.NewOpenID(server.Client(), "https://wavebreaker.example", "https://wavebreaker.example/auth/return")
			o.SetLoginURL(server.URL)

			callback := url.Values{}
			callback.Set("openid.mode", "id_res")
			callback.Set("openid.claimed_id", tt.claimedID)

			steamID, err := o.Verify(context.Background(), callback)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSteamID, steamID)
		})
	}
}
