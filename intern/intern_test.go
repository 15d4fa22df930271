package intern_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apex-lang/apex/intern"
)

func TestInternReturnsSamePointerForEqualStrings(t *testing.T) {
	table := intern.New()
	a := table.Intern("hello")
	b := table.Intern("hello")
	assert.Same(t, a, b)
}

func TestInternReturnsDistinctPointersForDifferentStrings(t *testing.T) {
	table := intern.New()
	a := table.Intern("hello")
	b := table.Intern("world")
	assert.NotSame(t, a, b)
}

func TestCatConcatenatesAndInterns(t *testing.T) {
	table := intern.New()
	a := table.Intern("foo")
	b := table.Intern("bar")
	cat := table.Cat(a, b)
	assert.Equal(t, "foobar", cat.Value)
	assert.Same(t, cat, table.Intern("foobar"))
}

func TestInternSurvivesResize(t *testing.T) {
	table := intern.New()
	var first *intern.Interned
	for i := 0; i < 200; i++ {
		s := fmt.Sprintf("key-%d", i)
		entry := table.Intern(s)
		if i == 0 {
			first = entry
		}
		assert.Equal(t, s, entry.Value)
	}
	assert.Same(t, first, table.Intern("key-0"))
}

func TestDefaultTableIsSharedAndUsable(t *testing.T) {
	a := intern.Default.Intern("apex-default-test-string")
	b := intern.Default.Intern("apex-default-test-string")
	assert.Same(t, a, b)
}
