package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatorEvaluatesExpressions(t *testing.T) {
	calc := NewCalculator()

	cases := []struct {
		expression string
		want       string
	}{
		{"50 * 4", "50 * 4 = 200"},
		{"2 + 3 * 4", "2 + 3 * 4 = 14"},
		{"(2 + 3) * 4", "(2 + 3) * 4 = 20"},
		{"10 / 4", "10 / 4 = 2.5"},
		{"-5 + 3", "-5 + 3 = -2"},
		{"1.5 * 2", "1.5 * 2 = 3"},
		{"100 - 37", "100 - 37 = 63"},
	}

	for _, tc := range cases {
		out, err := calc.Execute(context.Background(), CalculatorArgs{Expression: tc.expression}, ToolContext{})
		require.NoError(t, err, tc.expression)
		assert.Equal(t, tc.want, out)
	}
}

func TestCalculatorRejectsBadInput(t *testing.T) {
	calc := NewCalculator()

	for _, expression := range []string{"", "2 +", "(1 + 2", "hello", "1 / 0", "2 2"} {
		_, err := calc.Execute(context.Background(), CalculatorArgs{Expression: expression}, ToolContext{})
		assert.Error(t, err, expression)
	}
}

func TestCalculatorRejectsWrongArgs(t *testing.T) {
	calc := NewCalculator()

	_, err := calc.Execute(context.Background(), SearchArgs{Query: "2+2"}, ToolContext{})
	assert.Error(t, err)
}
