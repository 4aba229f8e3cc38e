package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neopallium/sub-script/pkg/account"
)

const chainSchema = "../../../pkg/engine/testdata/chain.json"

type cli struct {
	t       *testing.T
	dataDir string
	stdin   string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	// Keep the user's default config out of the way
	t.Setenv("HOME", t.TempDir())
	return &cli{t: t, dataDir: filepath.Join(t.TempDir(), "data")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(c.stdin))
	root.SetArgs(append([]string{"--no-color", "--data-dir", c.dataDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func writeSchema(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))
	return path
}

func TestEncodeCommand(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("encode", "Vec<u16>", "[1, 2, 3]")
	assert.Equal(t, "0x0c010002000300\n", out)

	out = c.mustRun("encode", "Compact<u32>", "64")
	assert.Equal(t, "0x0101\n", out)

	alice := account.NewKeyring().Get("Alice").Account()
	out = c.mustRun("encode", "AccountId", `"//Alice"`)
	assert.Equal(t, alice.String()+"\n", out)

	_, err := c.run("encode", "[u8; x]", "[1]")
	assert.Error(t, err)

	_, err = c.run("encode", "u8", "{not json")
	assert.Error(t, err)

	_, err = c.run("encode", "u8")
	assert.Error(t, err)
}

func TestEncodeCommand_Stdin(t *testing.T) {
	c := newCLI(t)
	c.stdin = "[1]"

	out := c.mustRun("encode", "Vec<u8>", "-")
	assert.Equal(t, "0x0401\n", out)
}

func TestDecodeCommand(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("decode", "Vec<u16>", "0x0c010002000300", "--compact-json")
	assert.JSONEq(t, "[1, 2, 3]", strings.TrimSpace(out))

	out = c.mustRun("decode", "(u8, bool)", "0x0701")
	assert.JSONEq(t, "[7, true]", strings.TrimSpace(out))

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := c.run("decode", "(u8, bool)", "0x070100")
		assert.Error(t, err)

		out := c.mustRun("decode", "(u8, bool)", "0x070100", "--partial")
		assert.JSONEq(t, "[7, true]", strings.TrimSpace(out))
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := c.run("decode", "u32", "0x0100")
		assert.Error(t, err)
	})

	t.Run("bad hex", func(t *testing.T) {
		_, err := c.run("decode", "u8", "0xzz")
		assert.Error(t, err)
	})
}

func TestSchemaFlag(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("-s", chainSchema, "types", "--filter", "Transfer")
	assert.Contains(t, out, "Transfer => ")
	assert.NotContains(t, out, "MultiAddress =>")

	out = c.mustRun("-s", chainSchema, "encode", "Transfer", `{"dest": {"Index": 1}, "value": 10}`)
	assert.Equal(t, "0x0104"+"28"+"\n", out)
}

func TestTypesCommand_Unresolved(t *testing.T) {
	c := newCLI(t)
	schema := writeSchema(t, `{"Holder": {"inner": "Missing"}, "Point": {"x": "u32"}}`)

	out := c.mustRun("-s", schema, "types", "--unresolved")
	assert.Contains(t, out, "Missing => ")
	assert.NotContains(t, out, "Point")

	out = c.mustRun("-s", schema, "types")
	assert.Contains(t, out, "Point => ")
	assert.Contains(t, out, "Holder => ")
}

func TestDescribeCommand(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("describe", "Vec<(u8, Text)>")
	assert.Contains(t, out, "Vec<(u8, Text)> => ")

	out = c.mustRun("describe", "Era")
	assert.Contains(t, out, "custom ")
	assert.Contains(t, out, "custom decoder")

	_, err := c.run("describe", "[u8; x]")
	assert.Error(t, err)
}

func TestSnapshotCommands(t *testing.T) {
	c := newCLI(t)
	doc := `{"Point": {"x": "u32", "y": "u32"}}`
	schema := writeSchema(t, doc)

	id := strings.TrimSpace(c.mustRun("snapshot", "save", "points", schema))
	require.NotEmpty(t, id)

	out := c.mustRun("snapshot", "list")
	assert.Contains(t, out, "LABEL")
	assert.Contains(t, out, id)
	assert.Contains(t, out, "points")

	out = c.mustRun("snapshot", "show", id)
	assert.JSONEq(t, doc, strings.TrimSpace(out))

	t.Run("load with --snapshot", func(t *testing.T) {
		out := c.mustRun("--snapshot", id, "encode", "Point", `{"x": 1, "y": 2}`)
		assert.Equal(t, "0x0100000002000000\n", out)
	})

	t.Run("reject invalid schema", func(t *testing.T) {
		bad := writeSchema(t, `["u32"]`)
		_, err := c.run("snapshot", "save", "bad", bad)
		assert.Error(t, err)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := c.run("snapshot", "show", "nope")
		assert.Error(t, err)
	})

	out = c.mustRun("snapshot", "delete", id)
	assert.Contains(t, out, "deleted "+id)

	_, err := c.run("snapshot", "show", id)
	assert.Error(t, err)
	_, err = c.run("snapshot", "delete", id)
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(t.TempDir(), "conf", "subscript.yaml")

	out := c.mustRun("init", "--config", path)
	assert.Contains(t, out, "Config written to "+path)
	assert.FileExists(t, path)

	_, err := c.run("init", "--config", path)
	assert.Error(t, err)

	out = c.mustRun("init", "--config", path, "--force")
	assert.Contains(t, out, "API key: ")

	// The written config is picked up by other commands
	out = c.mustRun("--config", path, "encode", "u8", "7")
	assert.Equal(t, "0x07\n", out)
}

func TestConfigValidation(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("--redefine", "sometimes", "encode", "u8", "1")
	assert.Error(t, err)

	_, err = c.run("--log-level", "loud", "encode", "u8", "1")
	assert.Error(t, err)

	_, err = c.run("--config", filepath.Join(t.TempDir(), "missing.yaml"), "encode", "u8", "1")
	assert.Error(t, err)
}

func TestRedefinePolicyFlag(t *testing.T) {
	c := newCLI(t)
	first := writeSchema(t, `{"Amount": "u8"}`)
	second := writeSchema(t, `{"Amount": "u16"}`)

	out := c.mustRun("-s", first, "-s", second, "encode", "Amount", "1")
	assert.Equal(t, "0x01\n", out)

	out = c.mustRun("-s", first, "-s", second, "--redefine", "overwrite", "encode", "Amount", "1")
	assert.Equal(t, "0x0100\n", out)

	_, err := c.run("-s", first, "-s", second, "--redefine", "reject", "encode", "Amount", "1")
	assert.Error(t, err)
}

func TestAccountCommand(t *testing.T) {
	c := newCLI(t)
	keyring := account.NewKeyring()

	out := c.mustRun("account", "Alice", "//Bob")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Alice\t"+keyring.Get("Alice").Account().String(), lines[0])
	assert.Equal(t, "Bob\t"+keyring.Get("Bob").Account().String(), lines[1])

	_, err := c.run("account", "//")
	assert.Error(t, err)
}
