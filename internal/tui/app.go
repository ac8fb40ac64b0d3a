// Package tui is the terminal news reader: a scrolling list of articles that
// loads more as the cursor nears the end, with like, trash, save and an
// on-demand summary for the selected article.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oneminnews/oneminnews/internal/ai"
	"github.com/oneminnews/oneminnews/internal/browser"
	"github.com/oneminnews/oneminnews/internal/feed"
	"github.com/oneminnews/oneminnews/internal/interact"
	"github.com/oneminnews/oneminnews/internal/models"
	"github.com/oneminnews/oneminnews/internal/session"
	"github.com/oneminnews/oneminnews/internal/summary"
)

const summaryFailureText = summary.FailureText

// Summaries hands out article summaries.
type Summaries interface {
	Get(ctx context.Context, a models.Article, variant string) (string, error)
	Refresh(ctx context.Context, a models.Article, variant string) (string, error)
	Cached(ctx context.Context, a models.Article, variant string) (string, bool)
}

// SourceLister lists the names accepted by the source filter.
type SourceLister interface {
	Sources(ctx context.Context) ([]string, error)
}

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeHelp
)

// requestTimeout bounds votes, saves and summaries started from the reader.
const requestTimeout = 30 * time.Second

// Options holds all parameters for launching the reader.
type Options struct {
	Trigger   *feed.Trigger
	Cards     *interact.Cards
	Summaries Summaries
	Sources   SourceLister
	Filter    feed.Filter
	// Context carries the signed-in session, if any.
	Context context.Context
	// Open opens a link; it defaults to the system browser.
	Open func(url string) error
	Now  func() time.Time
}

// App is the bubbletea model of the reader.
type App struct {
	trigger   *feed.Trigger
	cards     *interact.Cards
	summaries Summaries
	sources   SourceLister
	ctx       context.Context
	open      func(string) error
	now       func() time.Time

	cursor int
	focus  focusPane
	mode   mode

	width  int
	height int

	spinner   spinner.Model
	filterBar filterBar

	summaryVariant map[string]string
	summaryView    map[string]summaryView

	previewScroll int
	status        string
	err           error
}

// NewApp creates the reader model.
func NewApp(opts Options) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	open := opts.Open
	if open == nil {
		open = browser.Open
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &App{
		trigger:        opts.Trigger,
		cards:          opts.Cards,
		summaries:      opts.Summaries,
		sources:        opts.Sources,
		ctx:            ctx,
		open:           open,
		now:            now,
		spinner:        sp,
		filterBar:      newFilterBar(opts.Filter),
		summaryVariant: make(map[string]string),
		summaryView:    make(map[string]summaryView),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.subscribe(), a.loadSourcesCmd(), a.spinner.Tick)
}

// subscribe restarts the list under the current filter.
func (a *App) subscribe() tea.Cmd {
	a.cursor = 0
	a.previewScroll = 0
	return waitForPage(a.trigger.Subscribe(a.ctx, a.filterBar.filter))
}

// maybeLoadMore asks for the next page when the cursor can see the
// sentinel.
func (a *App) maybeLoadMore() tea.Cmd {
	if !a.trigger.SentinelVisible(a.cursor, a.trigger.Pager().Len()) {
		return nil
	}
	ch := a.trigger.Intersect(a.ctx)
	if ch == nil {
		return nil
	}
	return tea.Batch(waitForPage(ch), a.spinner.Tick)
}

func waitForPage(ch <-chan feed.Result) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return pageLoadedMsg{res: <-ch}
	}
}

func (a *App) loadSourcesCmd() tea.Cmd {
	if a.sources == nil {
		return nil
	}
	sources, ctx := a.sources, a.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		list, err := sources.Sources(ctx)
		return sourcesLoadedMsg{sources: list, err: err}
	}
}

// rows returns the loaded articles with their card state.
func (a *App) rows() []row {
	items := a.trigger.Pager().Snapshot().Items
	rows := make([]row, len(items))
	for i, it := range items {
		rows[i] = row{article: it, state: a.cards.Get(a.ctx, it).State()}
	}
	return rows
}

func (a *App) selected() (models.Article, bool) {
	items := a.trigger.Pager().Snapshot().Items
	if a.cursor < 0 || a.cursor >= len(items) {
		return models.Article{}, false
	}
	return items[a.cursor], true
}

type cardAction func(c *interact.Card, ctx context.Context) (interact.State, error)

func (a *App) cardCmd(action cardAction) tea.Cmd {
	art, ok := a.selected()
	if !ok {
		return nil
	}
	card := a.cards.Get(a.ctx, art)
	ctx := a.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		st, err := action(card, ctx)
		return cardUpdatedMsg{key: art.Key(), state: st, err: err}
	}
}

func (a *App) variantFor(key string) string {
	if v, ok := a.summaryVariant[key]; ok {
		return v
	}
	return summary.DefaultVariant
}

// summaryCmd shows the summary of the selected article, generating it when
// it is not cached or when refresh is set.
func (a *App) summaryCmd(refresh bool) tea.Cmd {
	art, ok := a.selected()
	if !ok || a.summaries == nil {
		return nil
	}
	key, variant := art.Key(), a.variantFor(art.Key())

	if !refresh {
		if text, ok := a.summaries.Cached(a.ctx, art, variant); ok {
			a.summaryView[key] = summaryView{variant: variant, text: text}
			return nil
		}
	}
	if cur := a.summaryView[key]; cur.loading && cur.variant == variant {
		return nil
	}
	a.summaryView[key] = summaryView{variant: variant, loading: true}

	summaries, ctx := a.summaries, a.ctx
	return tea.Batch(func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		get := summaries.Get
		if refresh {
			get = summaries.Refresh
		}
		text, err := get(ctx, art, variant)
		return summaryLoadedMsg{key: key, variant: variant, text: text, err: err}
	}, a.spinner.Tick)
}

func (a *App) openCmd() tea.Cmd {
	art, ok := a.selected()
	if !ok {
		return nil
	}
	open := a.open
	return func() tea.Msg {
		if err := open(art.Link); err != nil {
			return errMsg{err: err}
		}
		return statusMsg{text: "opened " + art.Link}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		a.status = ""
		return a.handleKey(msg)

	case pageLoadedMsg:
		if msg.res.Stale {
			return a, nil
		}
		if msg.res.Err != nil {
			a.err = fmt.Errorf("loading news: %w", msg.res.Err)
			return a, nil
		}
		if n := a.trigger.Pager().Len(); a.cursor >= n {
			a.cursor = max(0, n-1)
		}
		return a, nil

	case sourcesLoadedMsg:
		if msg.err != nil {
			a.err = fmt.Errorf("loading sources: %w", msg.err)
			return a, nil
		}
		a.filterBar.setSources(msg.sources)
		return a, nil

	case cardUpdatedMsg:
		a.trigger.Pager().SetVoteCount(msg.key, msg.state.VoteCount)
		if msg.err != nil {
			a.err = msg.err
		}
		return a, nil

	case summaryLoadedMsg:
		if msg.variant != a.variantFor(msg.key) {
			return a, nil
		}
		if msg.err != nil {
			a.summaryView[msg.key] = summaryView{variant: msg.variant, failed: true}
			return a, nil
		}
		a.summaryView[msg.key] = summaryView{variant: msg.variant, text: msg.text}
		return a, nil

	case statusMsg:
		a.status = msg.text
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.busy() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

// busy reports whether a page or a summary is loading.
func (a *App) busy() bool {
	if a.trigger.Pager().Loading() {
		return true
	}
	for _, v := range a.summaryView {
		if v.loading {
			return true
		}
	}
	return false
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	if a.mode == modeHelp {
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	n := a.trigger.Pager().Len()

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusPreview {
			a.previewScroll++
			return a, nil
		}
		if a.cursor < n-1 {
			a.cursor++
			a.previewScroll = 0
		}
		return a, a.maybeLoadMore()
	case "k", "up":
		if a.focus == focusPreview {
			if a.previewScroll > 0 {
				a.previewScroll--
			}
			return a, nil
		}
		if a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		}
		return a, nil
	case "g", "home":
		a.cursor = 0
		a.previewScroll = 0
		return a, nil
	case "G", "end":
		a.cursor = max(0, n-1)
		a.previewScroll = 0
		return a, a.maybeLoadMore()
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "l":
		return a, a.cardCmd((*interact.Card).ToggleLike)
	case "x":
		return a, a.cardCmd((*interact.Card).ToggleTrash)
	case "s":
		return a, a.cardCmd((*interact.Card).ToggleSave)
	case "enter", " ":
		art, ok := a.selected()
		if !ok {
			return a, nil
		}
		if a.cards.Get(a.ctx, art).ToggleExpanded().Expanded {
			return a, a.summaryCmd(false)
		}
		return a, nil
	case "b":
		art, ok := a.selected()
		if !ok {
			return a, nil
		}
		key := art.Key()
		if a.variantFor(key) == ai.VariantBrief {
			a.summaryVariant[key] = ai.VariantDetailed
		} else {
			a.summaryVariant[key] = ai.VariantBrief
		}
		if !a.cards.Get(a.ctx, art).State().Expanded {
			a.cards.Get(a.ctx, art).ToggleExpanded()
		}
		return a, a.summaryCmd(false)
	case "R":
		if art, ok := a.selected(); ok && a.cards.Get(a.ctx, art).State().Expanded {
			return a, a.summaryCmd(true)
		}
		return a, nil
	case "o":
		return a, a.openCmd()
	case "f":
		a.filterBar.nextSource()
		return a, a.subscribe()
	case "F":
		a.filterBar.prevSource()
		return a, a.subscribe()
	case "S":
		a.filterBar.nextSort()
		return a, a.subscribe()
	case "r":
		return a, tea.Batch(a.subscribe(), a.spinner.Tick)
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) userLabel() string {
	s, ok := session.FromContext(a.ctx)
	if !ok {
		return ""
	}
	if s.User.Email != "" {
		return s.User.Email
	}
	return s.User.Name
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  oneminnews")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	// Layout calculations
	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := max(3, a.height-headerHeight-filterHeight-statusHeight-4) // borders

	listWidth := int(float64(a.width) * 0.4)
	previewWidth := a.width - listWidth - 1 // gap

	now := a.now()

	// Header
	headerLeft := titleStyle.PaddingLeft(1).Render("oneminnews")
	headerRight := dimStyle.Render(now.Format("Mon Jan 2"))
	headerGap := max(0, a.width-lipgloss.Width(headerLeft)-lipgloss.Width(headerRight))
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	filter := a.filterBar.render(a.width)

	rows := a.rows()
	loading := a.trigger.Pager().Loading()

	// List pane
	listContent := renderList(rows, a.cursor, loading, contentHeight, listWidth-4, now)
	listPane := paneStyle(a.focus == focusList).Width(listWidth - 2).Height(contentHeight).Render(listContent)

	// Preview pane
	var sel *row
	var sum summaryView
	if a.cursor < len(rows) {
		sel = &rows[a.cursor]
		key := sel.article.Key()
		sum = a.summaryView[key]
		if sum.variant == "" {
			sum.variant = a.variantFor(key)
		}
	}
	previewContent := renderPreview(sel, sum, previewWidth-4, contentHeight, a.previewScroll, now)
	previewPane := paneStyle(a.focus == focusPreview).Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(len(rows), a.filterBar.label(), loading, a.width, a.userLabel())
	if a.busy() {
		status = a.spinner.View() + " " + status
	}
	switch {
	case a.err != nil:
		status = errorStyle.Render(a.err.Error())
	case a.status != "":
		status = dimStyle.Render(a.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderHelp() string {
	title := accentStyle.Render("oneminnews")
	dim := dimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move through the list (more loads near the end)\n" +
		"  g/G           First / last loaded article\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Article") + "\n" +
		"  l             Like (+1 vote)\n" +
		"  x             Trash (-1 vote)\n" +
		"  s             Save / unsave\n" +
		"  enter         Show or hide the summary\n" +
		"  b             Switch between brief and detailed summary\n" +
		"  R             Generate the summary again\n" +
		"  o             Open in browser\n\n" +
		dim.Render("List") + "\n" +
		"  f/F           Next / previous source\n" +
		"  S             Change sort order\n" +
		"  r             Reload\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(strings.TrimSpace(help))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the reader and blocks until it exits.
func Run(opts Options) error {
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	opts.Context = ctx

	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen())
	_, err := p.Run()

	// Abandon page loads still in flight.
	cancel()
	opts.Trigger.Wait()
	return err
}
