package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAsync(t *testing.T) {
	t.Run("empty input produces a pass body", func(t *testing.T) {
		assert.Equal(t, "async def __pyx_main__():\n    pass", WrapAsync(""))
	})

	t.Run("indents every line by four spaces, preserving blanks", func(t *testing.T) {
		got := WrapAsync("x = 1\n\ny = 2")
		want := "async def __pyx_main__():\n    x = 1\n\n    y = 2"
		assert.Equal(t, want, got)
	})

	t.Run("never collapses a double application", func(t *testing.T) {
		once := WrapAsync("x = 1")
		twice := WrapAsync(once)
		assert.NotEqual(t, once, twice)
		assert.True(t, strings.Count(twice, "async def __pyx_main__()") == 2)
	})
}

func TestWrapTopLevelAwait(t *testing.T) {
	t.Run("unchanged when no bare await is present", func(t *testing.T) {
		code := "x = 1\ny = 2"
		assert.Equal(t, code, WrapTopLevelAwait(code))
	})

	t.Run("unchanged when await is inside an async def", func(t *testing.T) {
		code := "async def f():\n    await g()\n"
		assert.Equal(t, code, WrapTopLevelAwait(code))
	})

	t.Run("wraps when a bare await sits outside any async def", func(t *testing.T) {
		code := "async def f():\n    pass\nawait g()"
		got := WrapTopLevelAwait(code)
		require.True(t, strings.HasPrefix(got, "async def __pyx_main__():\n"))
		assert.Contains(t, got, "    await g()")
	})

	t.Run("skips comments and blanks while scanning", func(t *testing.T) {
		code := "# await looks like it but is commented\n\nx = 1"
		assert.Equal(t, code, WrapTopLevelAwait(code))
	})
}

func TestRewriteImports(t *testing.T) {
	t.Run("stdlib imports pass through untouched", func(t *testing.T) {
		code := "import os\nimport sys"
		assert.Equal(t, code, RewriteImports(code))
	})

	t.Run("inserts a micropip install before a non-stdlib import, keeping the original", func(t *testing.T) {
		got := RewriteImports("import numpy as np")
		want := "await micropip.install(\"numpy\")\nimport numpy as np"
		assert.Equal(t, want, got)
	})

	t.Run("handles from-imports", func(t *testing.T) {
		got := RewriteImports("from pandas import DataFrame")
		want := "await micropip.install(\"pandas\")\nfrom pandas import DataFrame"
		assert.Equal(t, want, got)
	})

	t.Run("does not duplicate install lines for repeated imports", func(t *testing.T) {
		got := RewriteImports("import numpy\nimport numpy as np2")
		assert.Equal(t, 1, strings.Count(got, "micropip.install"))
	})

	t.Run("is idempotent: a second pass adds no new install lines", func(t *testing.T) {
		once := RewriteImports("import numpy as np")
		twice := RewriteImports(once)
		assert.Equal(t, once, twice)
	})
}

func TestCapturePrint(t *testing.T) {
	got := CapturePrint("print('hi')")
	assert.True(t, strings.HasPrefix(got, "import sys\nimport io\n__pyx_stdout__ = io.StringIO()\n"))
	assert.True(t, strings.HasSuffix(got, "print('hi')"))
}

func TestExtractReturnValue(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare expression becomes the result", "x = 1\nx", "x = 1\n__pyx_result__ = x"},
		{"assignment is left alone", "x = 1\ny = 2", "x = 1\ny = 2"},
		{"def header is left alone", "def f():\n    pass", "def f():\n    pass"},
		{"comparison == is not mistaken for assignment", "a == b", "__pyx_result__ = a == b"},
		{"trailing comment is preserved", "x  # the answer", "__pyx_result__ = x  # the answer"},
		{"trailing blank/comment lines are skipped during the backward scan", "x\n\n# trailing\n", "__pyx_result__ = x\n\n# trailing\n"},
		{"bare lambda expression is rewritten, not treated as assignment", "lambda x=1: x", "__pyx_result__ = lambda x=1: x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractReturnValue(tc.in))
		})
	}
}

func TestMockInput(t *testing.T) {
	assert.Equal(t, "x = await __pyx_input__()", MockInput("x = input()"))
	assert.Equal(t, "x = await __pyx_input__('name: ')", MockInput("x = input('name: ')"))
	assert.Equal(t, "y = myinput()", MockInput("y = myinput()"))
}

func TestWrapExceptions(t *testing.T) {
	got := WrapExceptions("x = 1")
	require.True(t, strings.HasPrefix(got, "import traceback\n__pyx_error__ = None\ntry:\n    x = 1\n"))
	assert.Contains(t, got, "except Exception as __pyx_exc__:")
	assert.Contains(t, got, "__pyx_error__ = {'type': type(__pyx_exc__).__name__, 'message': str(__pyx_exc__), 'traceback': traceback.format_exc()}")
}

// TestComposeNumpyExample reproduces spec §8 scenario 5 verbatim.
func TestComposeNumpyExample(t *testing.T) {
	code := "import numpy as np\nresult = np.mean([1,2,3])\nresult"

	rewritten := RewriteImports(code)
	extracted := ExtractReturnValue(rewritten)
	wrapped := WrapAsync(extracted)

	require.True(t, strings.HasPrefix(wrapped, "async def __pyx_main__():\n"))
	want := []string{
		"    await micropip.install(\"numpy\")",
		"    import numpy as np",
		"    result = np.mean([1,2,3])",
		"    __pyx_result__ = result",
	}
	lines := strings.Split(wrapped, "\n")[1:]
	require.Equal(t, want, lines)
}
