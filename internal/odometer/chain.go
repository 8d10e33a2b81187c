package odometer

import (
	"errors"
	"fmt"
)

const (
	// Columns is the number of digit cells in the chain
	Columns = 6
	// Base is the radix of every cell
	Base = 10
	// Modulus is the first value the chain cannot represent
	Modulus = 1000000
)

// Totals texts shown alongside the breakdown
const (
	StatusWorking = "Working..."
	StatusDone    = "Done!"
)

// ErrColumnOutOfRange is returned for a column index outside [0, Columns)
var ErrColumnOutOfRange = errors.New("column out of range")

// Direction selects increment or decrement
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// Terminal returns the digit every cell holds once a run in this direction ends
func (d Direction) Terminal() int {
	if d == Down {
		return 0
	}
	return Base - 1
}

// Chain is an odometer of six digit cells. Index 0 is the least significant
// cell and the higher-order neighbour of cell i is cell i+1.
type Chain struct {
	digits [Columns]int
}

// NewChain creates a chain with every cell at zero
func NewChain() *Chain {
	return &Chain{}
}

// Increment ticks column col up by one and carries into the next column on
// rollover. Overflow past the most significant column is dropped.
func (c *Chain) Increment(col int) error {
	if err := checkColumn(col); err != nil {
		return err
	}

	for ; col < Columns; col++ {
		old := c.digits[col]
		c.digits[col] = (old + 1) % Base
		if old != Base-1 {
			return nil
		}
	}
	return nil
}

// Decrement ticks column col down by one and borrows from the next column
// on rollover. Underflow past the most significant column is dropped.
func (c *Chain) Decrement(col int) error {
	if err := checkColumn(col); err != nil {
		return err
	}

	for ; col < Columns; col++ {
		old := c.digits[col]
		c.digits[col] = (old + Base - 1) % Base
		if old != 0 {
			return nil
		}
	}
	return nil
}

// Step applies one tick in the given direction
func (c *Chain) Step(col int, dir Direction) error {
	if dir == Down {
		return c.Decrement(col)
	}
	return c.Increment(col)
}

// Digit returns the value of column col
func (c *Chain) Digit(col int) (int, error) {
	if err := checkColumn(col); err != nil {
		return 0, err
	}
	return c.digits[col], nil
}

// Digits returns a copy of all cells, least significant first
func (c *Chain) Digits() [Columns]int {
	return c.digits
}

// Value returns the aggregate value of the chain
func (c *Chain) Value() int {
	value := 0
	for col := Columns - 1; col >= 0; col-- {
		value = value*Base + c.digits[col]
	}
	return value
}

// Set loads n into the chain, wrapping it into [0, Modulus)
func (c *Chain) Set(n int) {
	n %= Modulus
	if n < 0 {
		n += Modulus
	}
	for col := 0; col < Columns; col++ {
		c.digits[col] = n % Base
		n /= Base
	}
}

// Breakdown formats the chain as a sum of place values
func (c *Chain) Breakdown() string {
	return Breakdown(c.digits)
}

func (c *Chain) String() string {
	return fmt.Sprintf("%0*d", Columns, c.Value())
}

func checkColumn(col int) error {
	if col < 0 || col >= Columns {
		return fmt.Errorf("%w: %d", ErrColumnOutOfRange, col)
	}
	return nil
}
