package client

import (
	"strings"
	"testing"
	"time"

	"wirehttp/application/http"
	"wirehttp/application/jsonvalue"
	"wirehttp/application/multipart"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestDefaults(t *testing.T) {
	r := NewRequest().Host("example.test")

	raw := r.Raw()
	assert.Equal(t, "GET", raw.Method)
	assert.Equal(t, "/", raw.Target)
	assert.Equal(t, []string{"Connection: close"}, raw.Headers)
	assert.Equal(t, DefaultPort, r.port)
	assert.Zero(t, r.timeout)
	assert.NoError(t, r.Err())
}

func TestRequestWireBytes(t *testing.T) {
	testcases := []struct {
		desc     string
		request  *Request
		expected string
	}{
		{
			desc:     "get status",
			request:  NewRequest().Host("example.test").Port(80).Path("/status"),
			expected: "GET /status HTTP/1.1\r\nHost: example.test\r\nConnection: close\r\n\r\n",
		},
		{
			desc: "headers in insertion order",
			request: NewRequest().Host("h").Method("DELETE").Path("/x").
				AddHeader("Accept: */*").
				AddHeader("X-Trace: 1"),
			expected: "DELETE /x HTTP/1.1\r\nHost: h\r\nConnection: close\r\nAccept: */*\r\nX-Trace: 1\r\n\r\n",
		},
		{
			desc: "body gets one content length",
			request: NewRequest().Host("h").Method("POST").
				AddHeader("Content-Length: 100").
				Body([]byte("hello")),
			expected: "POST / HTTP/1.1\r\nHost: h\r\nConnection: close\r\nContent-Length: 5\r\n\r\nhello",
		},
		{
			desc: "json body",
			request: NewRequest().Host("h").Method("POST").Path("/items").
				BodyJSON(jsonvalue.Object{{Key: "a", Value: jsonvalue.Number(1)}, {Key: "b", Value: jsonvalue.String("x")}}),
			expected: "POST /items HTTP/1.1\r\nHost: h\r\nConnection: close\r\nContent-Type: application/json\r\nContent-Length: 15\r\n\r\n" +
				`{"a":1,"b":"x"}`,
		},
		{
			desc: "json body keeps caller content type",
			request: NewRequest().Host("h").Method("POST").
				AddHeader("content-type: application/vnd.api+json").
				BodyJSON(jsonvalue.Array{}),
			expected: "POST / HTTP/1.1\r\nHost: h\r\nConnection: close\r\ncontent-type: application/vnd.api+json\r\nContent-Length: 2\r\n\r\n[]",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			require.NoError(t, tc.request.Err())
			assert.Equal(t, tc.expected, string(tc.request.Bytes()))
		})
	}
}

func TestRequestPathQuery(t *testing.T) {
	testcases := []struct {
		desc     string
		params   []QueryParam
		expected string
	}{
		{desc: "no params", expected: "/search"},
		{desc: "single", params: []QueryParam{Param("q", "go")}, expected: "/search?q=go"},
		{
			desc:     "several",
			params:   []QueryParam{Param("q", "go"), Param("page", 2), Param("exact", true)},
			expected: "/search?q=go&page=2&exact=true",
		},
		{
			desc:     "array",
			params:   []QueryParam{Params("id", 1, 2, 3), Param("x", 0.5)},
			expected: "/search?id[]=1&id[]=2&id[]=3&x=0.5",
		},
		{
			desc:     "empty array is skipped",
			params:   []QueryParam{Params[string]("tag"), Param("q", "a b")},
			expected: "/search?q=a b",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			r := NewRequest().PathQuery("/search", tc.params...)
			assert.Equal(t, tc.expected, r.path)
		})
	}
}

func TestRequestURL(t *testing.T) {
	testcases := []struct {
		desc    string
		input   string
		host    string
		port    uint16
		path    string
		wantErr bool
	}{
		{desc: "host only", input: "http://example.test", host: "example.test", port: 80, path: "/"},
		{desc: "with port", input: "http://example.test:8080/a/b", host: "example.test", port: 8080, path: "/a/b"},
		{desc: "with query", input: "http://10.0.0.1/find?q=1&r=2", host: "10.0.0.1", port: 80, path: "/find?q=1&r=2"},
		{desc: "escaped path kept", input: "http://h/a%20b", host: "h", port: 80, path: "/a%20b"},
		{desc: "https unsupported", input: "https://example.test/", wantErr: true},
		{desc: "no host", input: "http:///path", wantErr: true},
		{desc: "bad port", input: "http://h:99999/", wantErr: true},
		{desc: "unparsable", input: "http://[::1", wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			r := NewRequest().URL(tc.input)
			if tc.wantErr {
				assert.Error(t, r.Err())
				return
			}

			require.NoError(t, r.Err())
			assert.Equal(t, tc.host, r.host)
			assert.Equal(t, tc.port, r.port)
			assert.Equal(t, tc.path, r.path)
		})
	}
}

func TestRequestFirstErrorKept(t *testing.T) {
	r := NewRequest().URL("ftp://x/").BodyJSON(jsonvalue.Number(0)).URL("::")
	require.Error(t, r.Err())
	assert.Contains(t, r.Err().Error(), "ftp")
}

func TestRequestBodyMultipart(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Unix(10, 20000))

	r := NewRequest().Host("h").Method("POST").
		BodyMultipart(multipart.New(mock).AddFormField("a", "b"))
	require.NoError(t, r.Err())

	wire := string(r.Bytes())
	head, body, found := strings.Cut(wire, "\r\n\r\n")
	require.True(t, found)

	lines := strings.Split(head, "\r\n")
	assert.Equal(t, `Content-Type: multipart/form-data; boundary="===10_20==="`, lines[3])

	field, err := http.ParseField(lines[4])
	require.NoError(t, err)
	assert.True(t, field.Is("Content-Length"))
	assert.Equal(t, len(body), mustAtoi(t, field.Value))
	assert.True(t, strings.HasPrefix(body, "--===10_20===\r\n"))
}

func TestRequestBodyMultipartError(t *testing.T) {
	r := NewRequest().BodyMultipart(multipart.New(clock.NewMock()).AddFilePart("f", "/does/not/exist", "x", "text/plain"))
	assert.Error(t, r.Err())
}

func TestTimeoutFromTimeval(t *testing.T) {
	assert.Equal(t, 30*time.Second, TimeoutFromTimeval(30, 0))
	assert.Equal(t, 1500*time.Millisecond, TimeoutFromTimeval(1, 500000))
	assert.Equal(t, 250*time.Microsecond, TimeoutFromTimeval(0, 250))
	assert.Equal(t, DefaultOptions.Timeout, TimeoutFromTimeval(30, 0))
}
