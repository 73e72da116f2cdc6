package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishn/Wordler/internal/automation"
	"github.com/rishn/Wordler/internal/game"
	"github.com/rishn/Wordler/internal/live"
	"github.com/rishn/Wordler/internal/solver"
	"github.com/rishn/Wordler/internal/store"
	"github.com/rishn/Wordler/internal/words"
)

const secret = "test-secret"

var (
	corpusOnce sync.Once
	corpus     *words.Corpus
)

type fixture struct {
	srv  *Server
	ts   *httptest.Server
	src  *words.Source
	hist *store.Memory
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()
	corpusOnce.Do(func() {
		c, err := words.Load(words.Options{})
		if err != nil {
			panic(err)
		}
		corpus = c
	})
	src := words.NewSource(corpus)
	hist := store.NewMemory(100)
	opts := Options{
		Corpus:         src,
		History:        hist,
		Live:           live.New(src, automation.NewLocal(src, "crane"), hist, live.Config{StepTimeout: 5 * time.Second}),
		OperatorSecret: secret,
		DailySalt:      "salt",
	}
	if mutate != nil {
		mutate(&opts)
	}
	srv := New(opts)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &fixture{srv: srv, ts: ts, src: src, hist: hist}
}

func (f *fixture) do(t *testing.T, method, path, body, token string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.ts.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, b
}

func operatorToken(t *testing.T) string {
	t.Helper()
	tok, _, err := SignOperatorToken(secret, "ops", 1)
	require.NoError(t, err)
	return tok
}

func TestDiagnostics(t *testing.T) {
	f := newFixture(t, nil)

	code, body := f.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	code, body = f.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"not_found"}`, string(body))

	code, body = f.do(t, http.MethodGet, "/corpus", "", "")
	assert.Equal(t, http.StatusOK, code)
	a, g := corpus.Stats()
	var res corpusRes
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, corpusRes{Answers: a, Allowed: g}, res)
}

func TestSolveSimulate(t *testing.T) {
	f := newFixture(t, nil)

	code, body := f.do(t, http.MethodPost, "/solve", `{"mode":"simulate","target":"Crane"}`, "")
	require.Equal(t, http.StatusOK, code, string(body))
	var res solveRes
	require.NoError(t, json.Unmarshal(body, &res))
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "simulate", res.Mode)
	assert.True(t, res.Success)
	assert.Equal(t, "crane", res.Answer)
	assert.Equal(t, solver.Opener, res.Steps[0].Guess)

	want, err := solver.Solve(context.Background(), solver.NewSelector(corpus), "crane")
	require.NoError(t, err)
	assert.Equal(t, want.Steps, res.Steps)

	recent, err := f.hist.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, res.ID, recent[0].ID)
	assert.Equal(t, "simulate", recent[0].Mode)
}

func TestSolveRejectsBadInput(t *testing.T) {
	f := newFixture(t, nil)

	for _, body := range []string{
		`{"mode":"simulate","target":"abc"}`,
		`{"mode":"simulate","target":"cr4ne"}`,
		`{"mode":"bogus"}`,
		`{not json`,
	} {
		code, _ := f.do(t, http.MethodPost, "/solve", body, "")
		assert.Equal(t, http.StatusBadRequest, code, body)
	}
	recent, err := f.hist.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestSolveRandomDefault(t *testing.T) {
	f := newFixture(t, nil)

	code, body := f.do(t, http.MethodPost, "/solve", "", "")
	require.Equal(t, http.StatusOK, code, string(body))
	var res solveRes
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "random", res.Mode)
	assert.NotEmpty(t, res.Steps)
	assert.LessOrEqual(t, len(res.Steps), solver.MaxTurns)
}

func TestDailyIsDeterministic(t *testing.T) {
	f := newFixture(t, nil)
	f.srv.now = func() time.Time { return time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC) }

	code, body := f.do(t, http.MethodGet, "/daily", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(body), "answer")
	var pick struct {
		Date  string `json:"date"`
		Index int    `json:"index"`
	}
	require.NoError(t, json.Unmarshal(body, &pick))
	assert.Equal(t, "2026-03-14", pick.Date)

	code, body = f.do(t, http.MethodPost, "/daily/solve", "", "")
	require.Equal(t, http.StatusOK, code, string(body))
	var first solveRes
	require.NoError(t, json.Unmarshal(body, &first))
	assert.Equal(t, "daily", first.Mode)
	assert.Equal(t, "2026-03-14", first.Date)

	code, body = f.do(t, http.MethodPost, "/solve", `{"mode":"daily"}`, "")
	require.Equal(t, http.StatusOK, code)
	var second solveRes
	require.NoError(t, json.Unmarshal(body, &second))
	assert.Equal(t, first.Steps, second.Steps)
	if first.Success {
		assert.Equal(t, corpus.Answers[pick.Index], first.Answer)
	}

	code, _ = f.do(t, http.MethodGet, "/daily?date=14-03-2026", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestExplain(t *testing.T) {
	f := newFixture(t, nil)

	code, body := f.do(t, http.MethodPost, "/solve/explain", `{"history":[]}`, "")
	require.Equal(t, http.StatusOK, code)
	var res explainRes
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, solver.Opener, res.Next.Word)
	assert.Equal(t, len(corpus.Answers), res.Remaining)
	assert.Len(t, res.Candidates, maxListed)
	assert.Len(t, res.Top, topN)

	p := game.Compare(solver.Opener, "crane")
	history := []solver.GuessResult{{Guess: solver.Opener, Pattern: p}}
	wantCands := solver.FilterCandidates(corpus.Answers, history)
	want := solver.NewSelector(corpus).Pick(wantCands, history, nil)

	code, body = f.do(t, http.MethodPost, "/solve/explain",
		`{"history":[{"guess":"ROATE","pattern":"`+p.String()+`"}]}`, "")
	require.Equal(t, http.StatusOK, code, string(body))
	res = explainRes{}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, len(wantCands), res.Remaining)
	assert.Contains(t, wantCands, "crane")
	assert.Equal(t, want.Word, res.Next.Word)
	for i := 1; i < len(res.Top); i++ {
		assert.GreaterOrEqual(t, res.Top[i-1].Total, res.Top[i].Total)
	}

	for _, bad := range []string{
		`{"history":[{"guess":"roat","pattern":"....."}]}`,
		`{"history":[{"guess":"roate","pattern":"..Q.."}]}`,
		`{"history":[` + strings.Repeat(`{"guess":"roate","pattern":"....."},`, solver.MaxTurns) + `{"guess":"roate","pattern":"....."}]}`,
	} {
		code, _ := f.do(t, http.MethodPost, "/solve/explain", bad, "")
		assert.Equal(t, http.StatusBadRequest, code, bad)
	}
}

func TestHistoryAndStats(t *testing.T) {
	f := newFixture(t, nil)
	for _, target := range []string{"crane", "slate"} {
		code, _ := f.do(t, http.MethodPost, "/solve", `{"mode":"simulate","target":"`+target+`"}`, "")
		require.Equal(t, http.StatusOK, code)
	}

	code, body := f.do(t, http.MethodGet, "/history?limit=1", "", "")
	require.Equal(t, http.StatusOK, code)
	var entries []store.Entry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 1)

	code, body = f.do(t, http.MethodGet, "/history/stats", "", "")
	require.Equal(t, http.StatusOK, code)
	var st store.Stats
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, 2, st.Attempts)

	for _, q := range []string{"0", "-1", "x", "501"} {
		code, _ := f.do(t, http.MethodGet, "/history?limit="+q, "", "")
		assert.Equal(t, http.StatusBadRequest, code, q)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	code, _ := f.do(t, http.MethodPost, "/solve", `{"mode":"simulate","target":"crane"}`, "")
	require.Equal(t, http.StatusOK, code)

	code, body := f.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "wordler_solver_attempts_total")
}

func TestCorpusReload(t *testing.T) {
	small, err := words.NewCorpus([]string{"crane", "slate"}, []string{"adieu"})
	require.NoError(t, err)
	var calls int
	f := newFixture(t, func(o *Options) {
		o.Reload = func(context.Context) (*words.Corpus, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("upstream down")
			}
			return small, nil
		}
	})

	code, _ := f.do(t, http.MethodPost, "/corpus/reload", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Zero(t, calls)

	code, body := f.do(t, http.MethodPost, "/corpus/reload", "", operatorToken(t))
	require.Equal(t, http.StatusOK, code, string(body))
	a, g := small.Stats()
	assert.JSONEq(t, `{"answers":`+itoa(a)+`,"allowed":`+itoa(g)+`}`, string(body))
	assert.Same(t, small, f.src.Corpus())

	code, _ = f.do(t, http.MethodPost, "/corpus/reload", "", operatorToken(t))
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Same(t, small, f.src.Corpus())
}

func TestCorpusReloadDisabled(t *testing.T) {
	f := newFixture(t, nil)
	code, _ := f.do(t, http.MethodPost, "/corpus/reload", "", operatorToken(t))
	assert.Equal(t, http.StatusNotImplemented, code)
}

func TestOperatorTokens(t *testing.T) {
	tok := operatorToken(t)
	sub, err := parseOperatorToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "ops", sub)

	_, err = parseOperatorToken("other", tok)
	assert.Error(t, err)
	_, err = parseOperatorToken("", tok)
	assert.ErrorIs(t, err, errNoSecret)
	_, _, err = SignOperatorToken("", "ops", 1)
	assert.ErrorIs(t, err, errNoSecret)

	f := newFixture(t, nil)
	code, body := f.do(t, http.MethodPost, "/corpus/reload", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.JSONEq(t, `{"error":"Invalid token"}`, string(body))
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func TestLiveStreamsAttempt(t *testing.T) {
	f := newFixture(t, nil)

	ws, res, err := websocket.DefaultDialer.Dial(wsURL(f.ts, "/live?token="+operatorToken(t)), nil)
	require.NoError(t, err)
	defer ws.Close()
	attemptID := res.Header.Get("X-Attempt-Id")
	assert.NotEmpty(t, attemptID)

	var types []string
	var last map[string]any
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err)
			break
		}
		last = map[string]any{}
		require.NoError(t, json.Unmarshal(msg, &last))
		types = append(types, last["type"].(string))
	}
	require.NotEmpty(t, types)
	assert.Equal(t, "complete", types[len(types)-1])
	assert.Contains(t, types, "step")
	assert.Equal(t, true, last["success"])
	assert.Equal(t, "crane", last["answer"])

	recent, err := f.hist.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, attemptID, recent[0].ID)
	assert.Equal(t, "live", recent[0].Mode)
}

func TestLiveRequiresOperator(t *testing.T) {
	f := newFixture(t, nil)
	_, res, err := websocket.DefaultDialer.Dial(wsURL(f.ts, "/live"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestLiveDisabled(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Live = nil })
	code, _ := f.do(t, http.MethodGet, "/live", "", operatorToken(t))
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
