package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTSG = `H	VN	1.0
G	g1
N	n1	chr1:+:100-200	r1:SO
N	n2	chr1:+:300-400	r1:IN
N	n3	chr1:+:500-600	r1:SI
E	e1	n1	n2	chr1,chr1,200,300,splice
E	e2	n2	n3	chr1,chr1,400,500,splice
G	g2
C	c1	x1 f1 x2
G	g3
N	m1	chr5:+:1-10	r9:SO
L	l1	g1:n1	g2:x1	fusion
L	l2	g1:n3	g3:m1	fusion
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.tsg")
	require.NoError(t, os.WriteFile(path, []byte(sampleTSG), 0644))
	return path
}

func TestCompressDecompress(t *testing.T) {
	in := writeSample(t)
	packed := filepath.Join(t.TempDir(), "sample.btsg")

	out, _, err := run(t, "compress", in, packed, "--codec", "snappy", "--sort")
	require.NoError(t, err)
	assert.Contains(t, out, "3 sections")

	text, _, err := run(t, "decompress", packed)
	require.NoError(t, err)
	assert.Equal(t, sampleTSG, text)

	unpacked := filepath.Join(t.TempDir(), "sample.out.tsg")
	_, _, err = run(t, "decompress", packed, unpacked)
	require.NoError(t, err)
	data, err := os.ReadFile(unpacked)
	require.NoError(t, err)
	assert.Equal(t, sampleTSG, string(data))
}

func TestDecompress_RejectsText(t *testing.T) {
	_, _, err := run(t, "decompress", writeSample(t))
	assert.Error(t, err)
}

func TestSummary_AcceptsBothFormats(t *testing.T) {
	in := writeSample(t)
	packed := filepath.Join(t.TempDir(), "sample.btsg")
	_, _, err := run(t, "compress", in, packed)
	require.NoError(t, err)

	want := "gid,nodes,edges,paths,max_path_len,super_path,bubble\n" +
		"g1,3,2,1,3,true,false\n" +
		"g2,2,1,0,0,false,false\n" +
		"g3,1,0,1,1,false,false\n"

	for _, input := range []string{in, packed} {
		out, _, err := run(t, "summary", input)
		require.NoError(t, err)
		assert.Equal(t, want, out, "input %s", filepath.Base(input))
	}

	csvPath := filepath.Join(t.TempDir(), "summary.csv")
	_, _, err = run(t, "summary", in, "-o", csvPath)
	require.NoError(t, err)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}

func TestTraverse(t *testing.T) {
	in := writeSample(t)

	out, _, err := run(t, "traverse", in, "--graph", "g1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "P\t"))
	assert.True(t, strings.HasSuffix(lines[0], "\tn1+\te1+\tn2+\te2+\tn3+"), lines[0])

	_, _, err = run(t, "traverse", in, "--graph", "missing")
	assert.Error(t, err)
}

func TestTopology(t *testing.T) {
	out, _, err := run(t, "topology", writeSample(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "gid,connected,cyclic,bubbles,class", lines[0])
	assert.Equal(t, "g1,true,false,0,unique-path", lines[1])
	assert.Equal(t, "g2,true,false,0,undefined", lines[2])
}

func TestQuery(t *testing.T) {
	in := writeSample(t)

	out, _, err := run(t, "query", in, "--ids", "g1,g3")
	require.NoError(t, err)
	assert.Contains(t, out, "G\tg1")
	assert.Contains(t, out, "G\tg3")
	assert.NotContains(t, out, "G\tg2")
	assert.Contains(t, out, "L\tl2\tg1:n3\tg3:m1\tfusion")
	assert.NotContains(t, out, "l1")

	idsFile := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(idsFile, []byte("g2\n\ng2\n"), 0644))
	out, _, err = run(t, "query", in, "--ids-file", idsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "C\tc1\tx1 f1 x2")
	assert.NotContains(t, out, "G\tg1")

	_, _, err = run(t, "query", in, "--ids", "nope")
	assert.Error(t, err)
	_, _, err = run(t, "query", in)
	assert.Error(t, err)
}

func TestMetricsFlag(t *testing.T) {
	in := writeSample(t)
	packed := filepath.Join(t.TempDir(), "sample.btsg")

	_, stderr, err := run(t, "--metrics", "--log-level", "error", "compress", in, packed)
	require.NoError(t, err)
	assert.Contains(t, stderr, `tsg_codec_blocks_total{block_type="dictionary",direction="encode"} 1`)
}

func TestRunIDIsLogged(t *testing.T) {
	_, stderr, err := run(t, "--log-level", "debug", "summary", writeSample(t))
	require.NoError(t, err)
	assert.Contains(t, stderr, "run_id=")
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("codec:\n  name: lz4\n"), 0644))
	_, _, err := run(t, "--config", path, "summary", writeSample(t))
	assert.Error(t, err)
}
