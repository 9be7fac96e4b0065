package pellematic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFetchURLShape(t *testing.T) {

	assert := assert.New(t)

	client, err := NewHTTPTouchClient("192.168.1.10", 4321, "0000", "ISO-8859-1", 3*time.Second, zap.NewNop())
	if err != nil {
		t.Error(err)
		return
	}

	assert.Equal("http://192.168.1.10:4321/0000/all?", client.FetchURL())
	assert.Equal("http://192.168.1.10:4321/0000/hk1_temp_set=215", client.WriteURL("hk1", "temp_set", "215"))
}

func TestNewHTTPTouchClientValidation(t *testing.T) {

	assert := assert.New(t)

	_, err := NewHTTPTouchClient("", 4321, "0000", "", 3*time.Second, zap.NewNop())
	assert.Error(err, "host is required")

	_, err = NewHTTPTouchClient("192.168.1.10", 4321, "", "", 3*time.Second, zap.NewNop())
	assert.Error(err, "password is required")
}

func TestFetchRaw(t *testing.T) {

	assert := assert.New(t)

	body := `{"pe1": {"L_temp_act": {"val": 612}}}`
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(body))
	}))
	defer server.Close()

	host, port := splitHostPort(t, server.URL)

	client, err := NewHTTPTouchClient(host, port, "0000", "ISO-8859-1", 3*time.Second, zap.NewNop())
	if err != nil {
		t.Error(err)
		return
	}

	raw, err := client.FetchRaw(context.Background())
	if err != nil {
		t.Error(err)
		return
	}
	assert.Equal(body, string(raw))
	assert.Equal("/0000/all", gotPath)
}

func TestFetchRawBadStatus(t *testing.T) {

	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	host, port := splitHostPort(t, server.URL)

	client, err := NewHTTPTouchClient(host, port, "0000", "", 3*time.Second, zap.NewNop())
	if err != nil {
		t.Error(err)
		return
	}

	_, err = client.FetchRaw(context.Background())
	assert.Error(err)
}

func TestWriteValue(t *testing.T) {

	assert := assert.New(t)

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	host, port := splitHostPort(t, server.URL)

	client, err := NewHTTPTouchClient(host, port, "0000", "", 3*time.Second, zap.NewNop())
	if err != nil {
		t.Error(err)
		return
	}

	err = client.WriteValue(context.Background(), "hk1", "temp_set", "215")
	if err != nil {
		t.Error(err)
		return
	}
	assert.Equal("/0000/hk1_temp_set=215", gotPath)
}

func TestTimeoutClamp(t *testing.T) {

	assert := assert.New(t)

	client, err := NewHTTPTouchClient("192.168.1.10", 4321, "0000", "", 100*time.Millisecond, zap.NewNop())
	if err != nil {
		t.Error(err)
		return
	}
	assert.Equal(MIN_FETCH_TIMEOUT, client.client.Timeout, "timeouts below the floor are clamped")
}

func splitHostPort(t *testing.T, rawURL string) (string, uint) {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	return u.Hostname(), uint(port)
}
