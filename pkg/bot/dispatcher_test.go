package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chartbot/pkg/bus"
	"chartbot/pkg/charts"
)

type topCountryCall struct {
	country string
	limit   int
}

type genreCall struct {
	country string
	genre   charts.Genre
	limit   int
}

type searchCall struct {
	query string
	limit int
}

type recordingLookup struct {
	topCountryCalls []topCountryCall
	worldCalls      []int
	genreCalls      []genreCall
	searchCalls     []searchCall

	chartResult  *charts.ChartResult
	searchResult *charts.SearchResult
	err          error
}

func (l *recordingLookup) TopCountryTracks(_ context.Context, country string, limit int) (*charts.ChartResult, error) {
	l.topCountryCalls = append(l.topCountryCalls, topCountryCall{country: country, limit: limit})
	return l.chartResult, l.err
}

func (l *recordingLookup) TopWorldTracks(_ context.Context, limit int) (*charts.ChartResult, error) {
	l.worldCalls = append(l.worldCalls, limit)
	return l.chartResult, l.err
}

func (l *recordingLookup) TopCountryGenreTracks(_ context.Context, country string, genre charts.Genre, limit int) (*charts.ChartResult, error) {
	l.genreCalls = append(l.genreCalls, genreCall{country: country, genre: genre, limit: limit})
	return l.chartResult, l.err
}

func (l *recordingLookup) SearchTracks(_ context.Context, query string, limit int) (*charts.SearchResult, error) {
	l.searchCalls = append(l.searchCalls, searchCall{query: query, limit: limit})
	return l.searchResult, l.err
}

func (l *recordingLookup) lookupCount() int {
	return len(l.topCountryCalls) + len(l.worldCalls) + len(l.genreCalls) + len(l.searchCalls)
}

func chartResultOf(titles ...string) *charts.ChartResult {
	payloads := make([]charts.TrackPayload, 0, len(titles))
	for _, title := range titles {
		payloads = append(payloads, charts.TrackPayload{Title: title})
	}
	return &charts.ChartResult{Tracks: payloads}
}

func dispatch(t *testing.T, lookup *recordingLookup, text string) string {
	t.Helper()

	dispatcher, err := NewDispatcher(lookup, nil)
	if err != nil {
		t.Fatalf("NewDispatcher error: %v", err)
	}

	outbound, err := dispatcher.Handle(context.Background(), bus.InboundMessage{
		Channel: "telegram",
		ChatID:  "42",
		Content: text,
	})
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if outbound.ChatID != "42" {
		t.Fatalf("chat id = %q, want %q", outbound.ChatID, "42")
	}

	return outbound.Content
}

func TestNewDispatcherRequiresLookup(t *testing.T) {
	if _, err := NewDispatcher(nil, nil); err == nil {
		t.Fatal("expected error when lookup is nil")
	}
}

func TestStartRepliesWithHelp(t *testing.T) {
	lookup := &recordingLookup{}

	reply := dispatch(t, lookup, "/start")
	if reply != helpReply {
		t.Fatalf("reply = %q, want help text", reply)
	}
	if lookup.lookupCount() != 0 {
		t.Fatalf("lookup calls = %d, want 0", lookup.lookupCount())
	}
}

func TestTopForwardsCountryAndLimit(t *testing.T) {
	lookup := &recordingLookup{chartResult: chartResultOf("A", "B", "C", "D", "E")}

	reply := dispatch(t, lookup, "/top us 5")

	if len(lookup.topCountryCalls) != 1 {
		t.Fatalf("top country calls = %d, want 1", len(lookup.topCountryCalls))
	}
	call := lookup.topCountryCalls[0]
	if call.country != "US" {
		t.Fatalf("country = %q, want %q", call.country, "US")
	}
	if call.limit != 5 {
		t.Fatalf("limit = %d, want 5", call.limit)
	}
	if !strings.Contains(reply, "5") || !strings.Contains(reply, "US") {
		t.Fatalf("reply header = %q", reply)
	}
	if !strings.Contains(reply, "1. A – ") || !strings.Contains(reply, "5. E – ") {
		t.Fatalf("reply body = %q", reply)
	}
}

func TestTopDefaultsCountryAndLimit(t *testing.T) {
	lookup := &recordingLookup{chartResult: chartResultOf()}

	dispatch(t, lookup, "/top")

	call := lookup.topCountryCalls[0]
	if call.country != "US" {
		t.Fatalf("country = %q, want default US", call.country)
	}
	if call.limit != 10 {
		t.Fatalf("limit = %d, want default 10", call.limit)
	}
}

func TestTopIgnoresNonNumericLimit(t *testing.T) {
	lookup := &recordingLookup{chartResult: chartResultOf()}

	dispatch(t, lookup, "/top us abc")

	if got := lookup.topCountryCalls[0].limit; got != 10 {
		t.Fatalf("limit = %d, want default 10", got)
	}
}

func TestWorldParsesLimit(t *testing.T) {
	lookup := &recordingLookup{chartResult: chartResultOf("A")}

	reply := dispatch(t, lookup, "/world 3")

	if len(lookup.worldCalls) != 1 || lookup.worldCalls[0] != 3 {
		t.Fatalf("world calls = %v, want [3]", lookup.worldCalls)
	}
	if !strings.Contains(reply, "1. A – ") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestGenreResolvesCanonicalValue(t *testing.T) {
	lookup := &recordingLookup{chartResult: chartResultOf("A")}

	reply := dispatch(t, lookup, "/genre us hip-hop-rap")

	if len(lookup.genreCalls) != 1 {
		t.Fatalf("genre calls = %d, want 1", len(lookup.genreCalls))
	}
	call := lookup.genreCalls[0]
	if call.genre != charts.GenreHipHopRap {
		t.Fatalf("genre = %q, want %q", call.genre, charts.GenreHipHopRap)
	}
	if call.country != "US" {
		t.Fatalf("country = %q, want %q", call.country, "US")
	}
	if call.limit != 10 {
		t.Fatalf("limit = %d, want 10", call.limit)
	}
	if !strings.Contains(reply, "hip hop rap") {
		t.Fatalf("reply header = %q, want genre with spaces", reply)
	}
}

func TestGenreMissingArgumentsRepliesUsage(t *testing.T) {
	lookup := &recordingLookup{}

	reply := dispatch(t, lookup, "/genre us")

	if reply != genreUsageReply {
		t.Fatalf("reply = %q, want usage hint", reply)
	}
	if lookup.lookupCount() != 0 {
		t.Fatalf("lookup calls = %d, want 0", lookup.lookupCount())
	}
}

func TestGenreUnknownRepliesWithValidValues(t *testing.T) {
	lookup := &recordingLookup{}

	reply := dispatch(t, lookup, "/genre us not_a_genre")

	if !strings.HasPrefix(reply, invalidGenreReply) {
		t.Fatalf("reply = %q, want invalid genre prefix", reply)
	}
	if !strings.Contains(reply, "hip-hop-rap") || !strings.Contains(reply, "pop") {
		t.Fatalf("reply = %q, want genre value list", reply)
	}
	if lookup.lookupCount() != 0 {
		t.Fatalf("lookup calls = %d, want 0", lookup.lookupCount())
	}
}

func TestSearchForwardsQueryWithFixedCap(t *testing.T) {
	lookup := &recordingLookup{
		searchResult: &charts.SearchResult{Tracks: []charts.TrackPayload{{Title: "Hit"}}},
	}

	reply := dispatch(t, lookup, "/search daft punk")

	if len(lookup.searchCalls) != 1 {
		t.Fatalf("search calls = %d, want 1", len(lookup.searchCalls))
	}
	call := lookup.searchCalls[0]
	if call.query != "daft punk" {
		t.Fatalf("query = %q, want %q", call.query, "daft punk")
	}
	if call.limit != 5 {
		t.Fatalf("limit = %d, want 5", call.limit)
	}
	if !strings.Contains(reply, `"daft punk"`) || !strings.Contains(reply, "1. Hit – ") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestSearchEmptyQueryRepliesUsage(t *testing.T) {
	lookup := &recordingLookup{}

	reply := dispatch(t, lookup, "/search ")

	if reply != searchUsageReply {
		t.Fatalf("reply = %q, want usage hint", reply)
	}
	if lookup.lookupCount() != 0 {
		t.Fatalf("lookup calls = %d, want 0", lookup.lookupCount())
	}
}

func TestSearchNoResultsNamesQuery(t *testing.T) {
	lookup := &recordingLookup{searchResult: &charts.SearchResult{}}

	reply := dispatch(t, lookup, "/search nothing here")

	if !strings.Contains(reply, "nothing here") {
		t.Fatalf("reply = %q, want literal query", reply)
	}
	if strings.Contains(reply, "1.") {
		t.Fatalf("reply = %q, want no track lines", reply)
	}
}

func TestUnknownCommandReply(t *testing.T) {
	lookup := &recordingLookup{}

	for _, text := range []string{"/unknowncmd", "hello", ""} {
		if reply := dispatch(t, lookup, text); reply != unknownReply {
			t.Fatalf("reply for %q = %q, want unknown-command message", text, reply)
		}
	}
	if lookup.lookupCount() != 0 {
		t.Fatalf("lookup calls = %d, want 0", lookup.lookupCount())
	}
}

func TestLookupFailureBecomesUnavailableReply(t *testing.T) {
	lookup := &recordingLookup{err: errors.New("connection refused")}

	dispatcher, err := NewDispatcher(lookup, nil)
	if err != nil {
		t.Fatalf("NewDispatcher error: %v", err)
	}

	outbound, err := dispatcher.Handle(context.Background(), bus.InboundMessage{ChatID: "1", Content: "/world"})
	if err != nil {
		t.Fatalf("Handle error: %v, want lookup failures swallowed", err)
	}
	if outbound.Content != unavailableReply {
		t.Fatalf("reply = %q, want unavailable message", outbound.Content)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Command
	}{
		{text: "/start", want: CommandStart},
		{text: "/top us", want: CommandTop},
		{text: "/top@SomeBot us", want: CommandTop},
		{text: "/world", want: CommandWorld},
		{text: "/genre us pop", want: CommandGenre},
		{text: "/search abba", want: CommandSearch},
		{text: "/Top us", want: CommandUnknown},
		{text: "top us", want: CommandUnknown},
		{text: "", want: CommandUnknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.text); got != tt.want {
			t.Fatalf("Classify(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		index int
		want  int
	}{
		{name: "absent", args: nil, index: 0, want: 10},
		{name: "numeric", args: []string{"us", "25"}, index: 1, want: 25},
		{name: "zero", args: []string{"0"}, index: 0, want: 0},
		{name: "non numeric", args: []string{"us", "abc"}, index: 1, want: 10},
		{name: "negative", args: []string{"-5"}, index: 0, want: 10},
		{name: "mixed digits", args: []string{"1a2"}, index: 0, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLimit(tt.args, tt.index); got != tt.want {
				t.Fatalf("parseLimit = %d, want %d", got, tt.want)
			}
		})
	}
}
