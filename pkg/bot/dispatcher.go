package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chartbot/pkg/bus"
	"chartbot/pkg/charts"
)

const (
	defaultLimit   = 10
	searchLimit    = 5
	defaultCountry = "us"
)

// Reply literals, carried verbatim from the original bot.
const (
	helpReply = "مرحبًا! هذا البوت يسمح لك باستكشاف مخططات شازام للموسيقى.\n" +
		"الأوامر المتاحة:\n" +
		"/top <رمز_الدولة> [عدد] – أفضل الأغاني في بلد ما (مثل /top us 10).\n" +
		"/world [عدد] – أفضل الأغاني عالميًا.\n" +
		"/genre <رمز_الدولة> <نوع> [عدد] – أفضل الأغاني حسب النوع في البلد.\n" +
		"/search <كلمة البحث> – البحث عن أغنية أو فنان أو ألبوم.\n"
	genreUsageReply    = "صيغة الأمر: /genre <رمز_الدولة> <نوع> [عدد]"
	invalidGenreReply  = "نوع غير صالح. الأنواع المتاحة:\n"
	searchUsageReply   = "اكتب اسم الأغنية أو الفنان بعد الأمر /search"
	unknownReply       = "الأمر غير معروف. استخدم /start للحصول على قائمة الأوامر."
	unavailableReply   = "الخدمة غير متوفرة حاليًا، يرجى المحاولة لاحقًا."
	noResultsReplyFmt  = "لم يتم العثور على نتائج لـ %s."
	topCountryReplyFmt = "أفضل %d أغاني في %s:\n%s"
	topWorldReplyFmt   = "أفضل %d أغاني عالمية:\n%s"
	topGenreReplyFmt   = "أفضل %d أغاني %s في %s:\n%s"
	searchReplyFmt     = "نتائج البحث عن \"%s\":\n%s"
)

// Lookup is the chart-lookup capability consumed by the dispatcher.
type Lookup interface {
	TopCountryTracks(ctx context.Context, country string, limit int) (*charts.ChartResult, error)
	TopWorldTracks(ctx context.Context, limit int) (*charts.ChartResult, error)
	TopCountryGenreTracks(ctx context.Context, country string, genre charts.Genre, limit int) (*charts.ChartResult, error)
	SearchTracks(ctx context.Context, query string, limit int) (*charts.SearchResult, error)
}

// Dispatcher routes recognized commands to chart lookups and renders one
// reply per inbound message.
//
// It holds no mutable state, so transports may invoke Handle concurrently.
type Dispatcher struct {
	lookup Lookup
	log    *slog.Logger
}

// NewDispatcher constructs a dispatcher around the given chart-lookup
// capability.
func NewDispatcher(lookup Lookup, log *slog.Logger) (*Dispatcher, error) {
	if lookup == nil {
		return nil, errors.New("lookup is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		lookup: lookup,
		log:    log.With("component", "bot.dispatcher"),
	}, nil
}

// Handle processes one inbound message and returns its reply.
//
// Chart lookup failures are converted to a fixed unavailable reply rather
// than returned, so the transport always acknowledges the event.
func (d *Dispatcher) Handle(ctx context.Context, inbound bus.InboundMessage) (bus.OutboundMessage, error) {
	text := strings.TrimSpace(inbound.Content)

	return bus.OutboundMessage{
		Channel:  inbound.Channel,
		ChatID:   inbound.ChatID,
		Content:  d.dispatch(ctx, text),
		Metadata: inbound.Metadata,
	}, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, text string) string {
	switch Classify(text) {
	case CommandStart:
		return helpReply
	case CommandTop:
		return d.topCountry(ctx, commandArgs(text))
	case CommandWorld:
		return d.topWorld(ctx, commandArgs(text))
	case CommandGenre:
		return d.topGenre(ctx, commandArgs(text))
	case CommandSearch:
		return d.search(ctx, text)
	default:
		return unknownReply
	}
}

func (d *Dispatcher) topCountry(ctx context.Context, args []string) string {
	country := defaultCountry
	if len(args) > 0 {
		country = args[0]
	}
	country = strings.ToUpper(country)
	limit := parseLimit(args, 1)

	result, err := d.lookup.TopCountryTracks(ctx, country, limit)
	if err != nil {
		return d.unavailable("top_country_tracks", err)
	}

	return fmt.Sprintf(topCountryReplyFmt, limit, country, charts.FormatTracks(result.TrackList()))
}

func (d *Dispatcher) topWorld(ctx context.Context, args []string) string {
	limit := parseLimit(args, 0)

	result, err := d.lookup.TopWorldTracks(ctx, limit)
	if err != nil {
		return d.unavailable("top_world_tracks", err)
	}

	return fmt.Sprintf(topWorldReplyFmt, limit, charts.FormatTracks(result.TrackList()))
}

func (d *Dispatcher) topGenre(ctx context.Context, args []string) string {
	if len(args) < 2 {
		return genreUsageReply
	}

	country := strings.ToUpper(args[0])
	genre, ok := charts.ResolveGenre(args[1])
	if !ok {
		return invalidGenreReply + charts.GenreValues()
	}
	limit := parseLimit(args, 2)

	result, err := d.lookup.TopCountryGenreTracks(ctx, country, genre, limit)
	if err != nil {
		return d.unavailable("top_country_genre_tracks", err)
	}

	return fmt.Sprintf(topGenreReplyFmt, limit, genre.Display(), country, charts.FormatTracks(result.TrackList()))
}

func (d *Dispatcher) search(ctx context.Context, text string) string {
	query := strings.TrimSpace(strings.TrimPrefix(text, searchPrefix))
	if query == "" {
		return searchUsageReply
	}

	result, err := d.lookup.SearchTracks(ctx, query, searchLimit)
	if err != nil {
		return d.unavailable("search_tracks", err)
	}

	tracks := result.TrackList()
	if len(tracks) == 0 {
		return fmt.Sprintf(noResultsReplyFmt, query)
	}

	return fmt.Sprintf(searchReplyFmt, query, charts.FormatTracks(tracks))
}

func (d *Dispatcher) unavailable(operation string, err error) string {
	d.log.Error("Chart lookup failed", "operation", operation, "error", err)
	return unavailableReply
}
