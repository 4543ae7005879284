package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(r Report) []string {
	out := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		out[i] = v.Kind
	}
	return out
}

func TestAnalyzeSafeCode(t *testing.T) {
	report := Analyze("x = 1\ndef f(y):\n    return x + y\n")
	assert.True(t, report.Safe)
	assert.Empty(t, report.Violations)
}

func TestAnalyzeOSSystemExample(t *testing.T) {
	// spec §8 scenario 4, verbatim.
	report := Analyze("import os\nos.system('rm -rf /')\n")
	require.False(t, report.Safe)
	assert.Contains(t, kinds(report), KindDangerousImport)
	assert.Contains(t, kinds(report), KindCommandInjection)

	for _, v := range report.Violations {
		if v.Kind == KindDangerousImport {
			require.NotNil(t, v.Line)
			assert.Equal(t, 1, *v.Line)
			assert.Equal(t, SeverityError, v.Severity)
		}
	}
}

func TestAnalyzeCodeExecution(t *testing.T) {
	for _, code := range []string{"eval('1+1')", "exec('x=1')", "compile('1', '<s>', 'eval')", "__import__('os')"} {
		report := Analyze(code)
		assert.Contains(t, kinds(report), KindCodeExecution, code)
	}
}

func TestAnalyzeFilesystemAccess(t *testing.T) {
	report := Analyze(`open("/etc/passwd")`)
	assert.Contains(t, kinds(report), KindFilesystemAccess)

	report = Analyze(`open("/tmp/out.txt", "w")`)
	assert.Contains(t, kinds(report), KindFilesystemAccess)

	report = Analyze(`open("relative.txt")`)
	assert.NotContains(t, kinds(report), KindFilesystemAccess)
}

func TestAnalyzeNetworkAccess(t *testing.T) {
	report := Analyze("import requests")
	assert.Contains(t, kinds(report), KindNetworkAccess)
}

func TestAnalyzeDangerousAttribute(t *testing.T) {
	report := Analyze("x.__globals__['y'] = 1")
	assert.Contains(t, kinds(report), KindDangerousAttribute)
}

func TestAnalyzeSerializationDanger(t *testing.T) {
	report := Analyze("import pickle")
	assert.Contains(t, kinds(report), KindSerializationDanger)
}

func TestAnalyzeFFIDanger(t *testing.T) {
	report := Analyze("import ctypes")
	assert.Contains(t, kinds(report), KindFFIDanger)
}

func TestAnalyzeInfiniteLoop(t *testing.T) {
	t.Run("flags while True with no break anywhere", func(t *testing.T) {
		report := Analyze("while True:\n    print('spin')\n")
		require.Contains(t, kinds(report), KindInfiniteLoop)
		for _, v := range report.Violations {
			if v.Kind == KindInfiniteLoop {
				assert.Equal(t, SeverityWarning, v.Severity)
			}
		}
	})

	t.Run("does not flag when break occurs anywhere in the source", func(t *testing.T) {
		report := Analyze("while True:\n    if x:\n        break\n")
		assert.NotContains(t, kinds(report), KindInfiniteLoop)
	})

	t.Run("while 1 is equivalent to while True", func(t *testing.T) {
		report := Analyze("while 1:\n    pass\n")
		assert.Contains(t, kinds(report), KindInfiniteLoop)
	})
}

func TestAnalyzeResourceExhaustion(t *testing.T) {
	for _, code := range []string{
		"for i in range(10**7):\n    pass",
		"for i in range(2**30):\n    pass",
		"x = [0] * (10**8)",
		"grid = [[0] * 10000] * 10000",
	} {
		report := Analyze(code)
		assert.Contains(t, kinds(report), KindResourceExhaustion, code)
	}

	report := Analyze("for i in range(100):\n    pass")
	assert.NotContains(t, kinds(report), KindResourceExhaustion)
}

func TestAnalyzeCommandInjection(t *testing.T) {
	for _, code := range []string{
		"os.popen('ls')",
		"subprocess.run(cmd, shell=True)",
		"os.system('echo hi')",
	} {
		report := Analyze(code)
		assert.Contains(t, kinds(report), KindCommandInjection, code)
	}
}

func TestAnalyzeMultipleViolationsPerLine(t *testing.T) {
	report := Analyze("os.system('rm -rf /') if eval('1') else None")
	assert.Contains(t, kinds(report), KindCommandInjection)
	assert.Contains(t, kinds(report), KindCodeExecution)
}

func TestRuleSetExtend(t *testing.T) {
	t.Run("rejects an exact duplicate kind", func(t *testing.T) {
		rs := DefaultRules()
		err := rs.Extend([]Rule{{Kind: KindCodeExecution, Severity: SeverityError, MessageFn: func(k, m string) string { return m }}})
		assert.Error(t, err)
	})

	t.Run("rejects a near-collision kind", func(t *testing.T) {
		rs := DefaultRules()
		err := rs.Extend([]Rule{{Kind: "code_executon", Severity: SeverityError, MessageFn: func(k, m string) string { return m }}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), KindCodeExecution)
	})

	t.Run("accepts a genuinely new kind and it participates in Analyze", func(t *testing.T) {
		rs := DefaultRules()
		err := rs.Extend([]Rule{{
			Kind:      "custom_marker",
			Patterns:  nil,
			Match:     func(line string) (bool, string) { return line == "MARK", "MARK" },
			MessageFn: func(k, m string) string { return "custom marker found" },
			Severity:  SeverityWarning,
		}})
		require.NoError(t, err)
		report := rs.Analyze("MARK\n")
		assert.Contains(t, kinds(report), "custom_marker")
	})
}
