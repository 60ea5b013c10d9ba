package env

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleNewMapEnvFromEnvList() {
	env := NewMapEnvFromEnvList([]string{"A=B", "E", "F=G=H"})

	fmt.Printf("Getenv(\"A\"): %q\n", env.Getenv("A"))
	fmt.Printf("Getenv(\"E\"): %q\n", env.Getenv("E"))
	fmt.Printf("Getenv(\"F\"): %q\n", env.Getenv("F"))

	// Output: Getenv("A"): "B"
	// Getenv("E"): ""
	// Getenv("F"): "G=H"
}

func ExampleMapEnv_LookupEnv() {
	env := NewMapEnv()
	env.Setenv("A", "B")

	val, ok := env.LookupEnv("A")
	fmt.Println("Existing", "val:", val, "ok:", ok)
	val, ok = env.LookupEnv("B")
	fmt.Println("Missing", "val:", val, "ok:", ok)

	// Output: Existing val: B ok: true
	// Missing val:  ok: false
}

func ExampleSetList() {
	env := NewMapEnv()
	SetList(env, "xs", []string{"a", "b", "c"})

	fmt.Printf("stored: %q\n", env.Getenv("xs"))
	fmt.Printf("list: %q\n", GetList(env, "xs"))

	SetList(env, "xs", nil)
	_, ok := env.LookupEnv("xs")
	fmt.Println("after clearing, present:", ok)

	// Output: stored: "a\x01b\x01c"
	// list: ["a" "b" "c"]
	// after clearing, present: false
}

func TestGetListAbsent(t *testing.T) {
	env := NewMapEnv()
	assert.Nil(t, GetList(env, "missing"))

	// A present empty string is a single empty element, not absence.
	env.Setenv("empty", "")
	assert.Equal(t, []string{""}, GetList(env, "empty"))
}

func TestUnsetenv(t *testing.T) {
	env := NewMapEnv()
	env.Setenv("A", "B")
	env.Unsetenv("A")

	_, ok := env.LookupEnv("A")
	assert.False(t, ok)

	// Unset on a fresh env must not panic.
	assert.NoError(t, NewMapEnv().Unsetenv("nope"))
}

func TestInitDefaults(t *testing.T) {
	env := NewMapEnvFromEnvList([]string{
		"HOME=/home/glenda",
		"PATH=/usr/bin:/bin",
	})
	Init(env)

	assert.Equal(t, []string{" ", "\t", "\n"}, GetList(env, "ifs"))
	assert.Equal(t, "\n", env.Getenv("nl"))
	assert.Equal(t, "\t", env.Getenv("tab"))
	assert.Equal(t, "0", env.Getenv("status"))
	assert.Equal(t, "/home/glenda", env.Getenv("home"))
	assert.Equal(t, []string{"/usr/bin", "/bin"}, GetList(env, "path"))

	// The prompt is a four-way split: left, top-left, top-right, right.
	assert.Len(t, Split(env.Getenv("prompt")), 4)
}

func TestEnviron(t *testing.T) {
	env := NewMapEnv()
	env.Setenv("A", "B")
	env.Setenv(FnPrefix+"greet", "echo hi")

	environ := env.Environ()
	assert.Contains(t, environ, "A=B")
	assert.Contains(t, environ, FnPrefix+"greet=echo hi")
}

func TestJoinSplitRoundTrip(t *testing.T) {
	elems := []string{"a", "b c", "", "d"}
	assert.Equal(t, elems, Split(Join(elems)))
	assert.Equal(t, strings.Count(Join(elems), ListSep)+1, len(elems))
}
