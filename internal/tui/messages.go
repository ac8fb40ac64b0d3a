package tui

import (
	"github.com/oneminnews/oneminnews/internal/feed"
	"github.com/oneminnews/oneminnews/internal/interact"
)

type pageLoadedMsg struct {
	res feed.Result
}

type sourcesLoadedMsg struct {
	sources []string
	err     error
}

type cardUpdatedMsg struct {
	key   string
	state interact.State
	err   error
}

type summaryLoadedMsg struct {
	key     string
	variant string
	text    string
	err     error
}

type statusMsg struct {
	text string
}

type errMsg struct {
	err error
}
