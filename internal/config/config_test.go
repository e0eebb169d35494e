package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"httpkit/application/http/client"
	"httpkit/application/http/semantic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvUserAgent, "")
	t.Setenv(EnvTimeout, "")
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "httpkit.yaml", `
user_agent: tester/1.0
timeout: 5s
merge: request-first
use_received_reason_phrase: true
max_body_size: 1024
headers:
  - name: Accept
    value: application/json
  - name: X-Trace
    value: "1"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		UserAgent: "tester/1.0",
		Timeout:   5 * time.Second,
		Merge:     "request-first",
		Headers: []Header{
			{Name: "Accept", Value: "application/json"},
			{Name: "X-Trace", Value: "1"},
		},
		UseReceivedReasonPhrase: true,
		MaxBodySize:             1024,
	}, cfg)
}

func TestLoadWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadErrors(t *testing.T) {
	testcases := []struct {
		desc    string
		content string
		wantErr error
	}{
		{desc: "invalid merge", content: "merge: sideways", wantErr: ErrInvalidMerge},
		{desc: "invalid yaml", content: "timeout: [1, 2"},
		{desc: "invalid duration", content: "timeout: soon"},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			clearEnv(t)

			_, err := Load(writeFile(t, "httpkit.yaml", tc.content))
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)

		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "httpkit.yaml", "user_agent: from-file\ntimeout: 5s\n")

	t.Setenv(EnvUserAgent, "from-env")
	t.Setenv(EnvTimeout, "90s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.UserAgent)
	assert.Equal(t, 90*time.Second, cfg.Timeout)

	t.Setenv(EnvTimeout, "ninety")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvUserAgent)

	path := writeFile(t, ".env", EnvUserAgent+"=from-dotenv\n")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-dotenv", os.Getenv(EnvUserAgent))

	// Missing files are fine.
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), ".env")))
}

func TestClientOptions(t *testing.T) {
	testcases := []struct {
		desc     string
		cfg      Config
		expected client.Options
		wantErr  bool
	}{
		{
			desc:     "empty",
			cfg:      Config{},
			expected: client.Options{Merge: client.MergeDefaultsFirst},
		},
		{
			desc: "full",
			cfg: Config{
				UserAgent: "ua",
				Timeout:   time.Second,
				Merge:     "Request-First",
				Headers:   []Header{{Name: "Accept", Value: "*/*"}},

				UseReceivedReasonPhrase: true,
			},
			expected: client.Options{
				UserAgent:      "ua",
				Timeout:        time.Second,
				Merge:          client.MergeRequestFirst,
				DefaultHeaders: semantic.NewHeaders(semantic.Field{Name: "Accept", Value: "*/*"}),

				UseReceivedReasonPhrase: true,
			},
		},
		{
			desc:    "bad merge",
			cfg:     Config{Merge: "whatever"},
			wantErr: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			opts, err := tc.cfg.ClientOptions()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMerge)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, opts)
		})
	}
}

func TestWireOptions(t *testing.T) {
	opts := (&Config{}).WireOptions()
	assert.Equal(t, client.DefaultWireOptions, opts)
	assert.NotZero(t, opts.MaxBodySize)
	assert.NotZero(t, opts.Decode.MaxFieldLineLength)
	assert.NotZero(t, opts.Decode.MaxStatusLineLength)

	opts = (&Config{MaxBodySize: 1024}).WireOptions()
	assert.Equal(t, uint(1024), opts.MaxBodySize)
	assert.Equal(t, client.DefaultWireOptions.Decode, opts.Decode)
}
