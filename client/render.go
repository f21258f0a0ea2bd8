package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"blockdrop/tetris"
)

const (
	// ASCII colors.
	Red    = "31" // active piece
	Yellow = "33" // locked cells

	resetPos    = "\033[H"    // Reset cursor position to 0,0
	clearScreen = "\033[2J\033[H"

	sidebarWidth = 28
	lobbyWidth   = 18
)

//go:embed "layout.tmpl"
var layout string

var (
	pieceCell = fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", Red)
	solidCell = fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", Yellow)
	emptyCell = "  "
)

var controls = []string{
	"← → / a d   move",
	"↓ / s       soft drop",
	"↑ / w       rotate",
	"space       hard drop",
	"esc         back to lobby",
}

type templateData struct {
	Snapshot *tetris.Snapshot
	Online   bool
	Notice   string
}

type render struct {
	writer    io.Writer
	logger    *slog.Logger
	template *template.Template
	*templateData
}

func newRender(w io.Writer, l *slog.Logger) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &render{
		writer:       w,
		logger:       l,
		template:     tmp,
		templateData: &templateData{},
	}, nil
}

// lobby draws the menu box on top of whatever is on screen.
func (r *render) lobby(msg string) {
	fmt.Fprint(r.writer, "\033[9;3H+------------------+")
	fmt.Fprint(r.writer, "\033[10;3H|    Blockdrop     |")
	fmt.Fprintf(r.writer, "\033[11;3H|%s|", center(msg, lobbyWidth))
	fmt.Fprint(r.writer, "\033[12;3H| (p)lay (o)nline  |")
	fmt.Fprint(r.writer, "\033[13;3H|     (q)uit       |")
	fmt.Fprint(r.writer, "\033[14;3H+------------------+")
}

// game draws the grid. A snapshot following a game over reset leaves a
// notice with the score the game ended with.
func (r *render) game(s *tetris.Snapshot) {
	if s != nil && s.GameOver {
		r.Notice = fmt.Sprintf("game over! score %d", s.FinalScore)
	}
	r.Snapshot = s
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.templateData); err != nil {
		r.logger.Error("unable to execute template in game()", slog.String("error", err.Error()))
	}
}

// reset clears the screen and the data from the previous game.
func (r *render) reset(online bool) {
	r.templateData = &templateData{Online: online}
	fmt.Fprint(r.writer, clearScreen)
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"cells":   cells,
		"sidebar": sidebar,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	l = strings.Replace(l, "Blockdrop", "\033[1mBlockdrop\033[0m", 1)
	return template.New("layout").Funcs(funcMap).Parse(l)
}

// cells returns what to draw on every cell of the grid: locked cells, the
// active piece on top of them, and blanks.
func cells(t *templateData) [tetris.Height][tetris.Width]string {
	rendered := [tetris.Height][tetris.Width]string{}
	for y := range rendered {
		for x := range rendered[y] {
			rendered[y][x] = emptyCell
		}
	}
	if t == nil || t.Snapshot == nil {
		return rendered
	}

	for y, row := range t.Snapshot.Grid {
		for x, c := range row {
			if c && y < tetris.Height && x < tetris.Width {
				rendered[y][x] = solidCell
			}
		}
	}
	if t.Snapshot.Piece != nil {
		for row, col := range t.Snapshot.Piece.Cells() {
			if row >= 0 && row < tetris.Height && col >= 0 && col < tetris.Width {
				rendered[row][col] = pieceCell
			}
		}
	}
	return rendered
}

// sidebar returns the text to the right of the given grid row. Lines are
// padded so shorter text overwrites what the previous frame left.
func sidebar(t *templateData, row int) string {
	var s string
	switch {
	case row == 1:
		var score int
		if t.Snapshot != nil {
			score = t.Snapshot.Score
		}
		s = fmt.Sprintf("Score: %d", score)
	case row == 2:
		var score int
		if t.Snapshot != nil {
			score = t.Snapshot.Score
		}
		s = fmt.Sprintf("Speed: %dms", tetris.Period(score)/time.Millisecond)
	case row == 4:
		s = t.Notice
	case row >= 7 && row < 7+len(controls):
		s = controls[row-7]
	}
	return "   " + pad(s, sidebarWidth)
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return string([]rune(s)[:width])
	}
	return s + strings.Repeat(" ", width-n)
}

func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return string([]rune(s)[:width])
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
