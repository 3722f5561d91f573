package policy

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-learner/internal/tictactoe"
)

const maxAttempts = 3

// Human reads moves as "row col" lines, both 1-based, and validates them
// against the available cells.
type Human struct {
	player *entity.Player
	in     *bufio.Reader
	out    io.Writer
}

// NewHuman reuses in when it is already buffered, so that several humans can
// share one console without stealing each other's lines.
func NewHuman(player *entity.Player, in io.Reader, out io.Writer) *Human {
	reader, ok := in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(in)
	}

	return &Human{
		player: player,
		in:     reader,
		out:    out,
	}
}

func (that *Human) ChooseMove(board *tictactoe.Board, _ *qtable.QTable) (entity.Move, error) {
	available := board.Current.AvailableMoves()

	fmt.Fprint(that.out, board.Current.Render())
	fmt.Fprintf(that.out, "%s (%s), please, enter your move as \"row column\" (1-3):\n", that.player.ID, that.player.Mark)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		line, err := that.readLine()
		if err != nil {
			return entity.Move{}, err
		}

		move, err := parseHumanMove(line)
		if err == nil && slices.Contains(available, move) {
			return move, nil
		}

		if err == nil {
			fmt.Fprintln(that.out, "The square is taken, please, choose another one:")
		} else {
			fmt.Fprintln(that.out, "Unknown input, please, try again (two numbers 1, 2 or 3):")
		}
	}

	return entity.Move{}, fmt.Errorf("%w: %d attempts", apperror.ErrRepeatedInvalidInput, maxAttempts)
}

// ChooseMark asks which mark the human wants to play. X moves first.
func (that *Human) ChooseMark() (entity.Mark, error) {
	fmt.Fprintf(that.out, "%s, do you want to play X (makes the first move) or O?\n", that.player.ID)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		line, err := that.readLine()
		if err != nil {
			return entity.Empty, err
		}

		switch strings.ToUpper(line) {
		case "X":
			return entity.Cross, nil
		case "O", "0":
			return entity.Nought, nil
		}

		fmt.Fprintln(that.out, "You typed a wrong symbol, please, try again:")
	}

	return entity.Empty, fmt.Errorf("%w: %d attempts", apperror.ErrRepeatedInvalidInput, maxAttempts)
}

func (that *Human) readLine() (string, error) {
	line, err := that.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func parseHumanMove(line string) (entity.Move, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	if len(fields) != 2 {
		return entity.Move{}, fmt.Errorf("%w: %q", apperror.ErrInvalidMove, line)
	}

	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return entity.Move{}, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
	}

	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return entity.Move{}, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
	}

	move := entity.Move{Row: row - 1, Col: col - 1}
	if !move.InRange() {
		return entity.Move{}, fmt.Errorf("%w: %s", apperror.ErrInvalidMove, move)
	}

	return move, nil
}

func NewHumanPlayer(id string, role entity.Role, in io.Reader, out io.Writer) (*Participant, *Human) {
	player := &entity.Player{ID: id, Role: role}
	human := NewHuman(player, in, out)

	return NewParticipant(player, human, nil), human
}
