package bluray

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"sonybd/internal/netif"
	"sonybd/internal/prompt"
	"sonybd/internal/settings"
)

const (
	testLocalMAC  = "78:61:7c:a9:cc:c9"
	testPlayerMAC = "00:11:22:33:44:55"
	testInstance  = "bluray"
)

const testCommandList = `<?xml version="1.0"?>
<remoteCommandList>
  <command name="Confirm" type="ircc" value="AAAAAwAAHFoAAAA9Aw=="/>
  <command name="Forward" type="ircc" value="AAAAAwAAHFoAAAAcAw=="/>
  <command name="Next" type="ircc" value="AAAAAwAAHFoAAAA9Aw=="/>
  <command name="Prev" type="ircc" value="AAAAAwAAHFoAAAA8Aw=="/>
  <command name="Play" type="ircc" value="AAAAAwAAHFoAAAAaAw=="/>
</remoteCommandList>`

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

// fakePlayer serves the status API and IRCC endpoint from one listener.
// Each *Codes slice is consumed in order; the last entry repeats.
type fakePlayer struct {
	t      *testing.T
	server *httptest.Server

	mu               sync.Mutex
	statusCodes      []int
	statusBody       string
	commandListCodes []int
	commandListBody  string
	renewalCodes     []int
	initialCodes     []int
	irccCodes        []int
	requests         []recordedRequest
}

func newFakePlayer(t *testing.T) *fakePlayer {
	fp := &fakePlayer{
		t:               t,
		statusBody:      `<?xml version="1.0"?><statusList><status name="viewing"><statusItem field="source" value="BD"/></status></statusList>`,
		commandListBody: testCommandList,
	}
	fp.server = httptest.NewServer(http.HandlerFunc(fp.handle))
	t.Cleanup(fp.server.Close)
	return fp
}

func nextCode(codes *[]int) int {
	if len(*codes) == 0 {
		return http.StatusOK
	}
	code := (*codes)[0]
	if len(*codes) > 1 {
		*codes = (*codes)[1:]
	}
	return code
}

func (fp *fakePlayer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	fp.mu.Lock()
	fp.requests = append(fp.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   string(body),
	})

	var code int
	var reply string
	switch r.URL.Path {
	case StatusPath:
		code, reply = nextCode(&fp.statusCodes), fp.statusBody
	case CommandListPath:
		code, reply = nextCode(&fp.commandListCodes), fp.commandListBody
	case RegisterPath:
		switch r.URL.Query().Get("registrationType") {
		case registrationRenewal:
			code = nextCode(&fp.renewalCodes)
		case registrationInitial:
			code = nextCode(&fp.initialCodes)
		default:
			code = http.StatusBadRequest
		}
	case IRCCPath:
		code = nextCode(&fp.irccCodes)
	default:
		code = http.StatusNotFound
	}
	fp.mu.Unlock()

	w.WriteHeader(code)
	if code == http.StatusOK {
		io.WriteString(w, reply)
	}
}

// requestsTo returns recorded requests for path, optionally filtered by registration type
func (fp *fakePlayer) requestsTo(path string, registrationType string) []recordedRequest {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	var matched []recordedRequest
	for _, req := range fp.requests {
		if req.Path != path {
			continue
		}
		if registrationType != "" && req.Query.Get("registrationType") != registrationType {
			continue
		}
		matched = append(matched, req)
	}
	return matched
}

func (fp *fakePlayer) requestCount() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return len(fp.requests)
}

func (fp *fakePlayer) hostPort() (string, int) {
	u, err := url.Parse(fp.server.URL)
	require.NoError(fp.t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(fp.t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(fp.t, err)
	return host, port
}

type fakeWaker struct {
	mu    sync.Mutex
	calls []string
	errs  []error
}

func (w *fakeWaker) Wake(ctx context.Context, mac string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, mac)
	if len(w.errs) > 0 {
		err := w.errs[0]
		w.errs = w.errs[1:]
		return err
	}
	return nil
}

func (w *fakeWaker) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.calls)
}

type recordingSleeper struct {
	mu   sync.Mutex
	naps []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.naps = append(s.naps, d)
	return ctx.Err()
}

type testHarness struct {
	player   *fakePlayer
	client   *PlayerClient
	waker    *fakeWaker
	sleeper  *recordingSleeper
	store    *settings.MemoryStore
	prompter *prompt.Static
}

// newTestHarness wires a PlayerClient against a fake player. It is not started.
func newTestHarness(t *testing.T, maxRetries int, answers ...string) *testHarness {
	h := &testHarness{
		player:   newFakePlayer(t),
		waker:    &fakeWaker{},
		sleeper:  &recordingSleeper{},
		store:    settings.NewMemoryStore(),
		prompter: prompt.NewStatic(answers...),
	}

	host, port := h.player.hostPort()
	h.client = NewPlayerClient(Options{
		InstanceID: testInstance,
		Address:    host,
		MAC:        testPlayerMAC,
		IRCCPort:   port,
		Port:       port,
		MaxRetries: maxRetries,
		Backoff:    time.Second,
	}, Dependencies{
		Waker:       h.waker,
		MACResolver: netif.Static(testLocalMAC),
		Credentials: h.store,
		Prompter:    h.prompter,
		Sleep:       h.sleeper.sleep,
	}, nil)

	return h
}

func (h *testHarness) start(t *testing.T) {
	require.NoError(t, h.client.Start(context.Background()))
}

var errWakeFailed = errors.New("network unreachable")
