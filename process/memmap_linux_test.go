//go:build linux

package process

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

const sampleMaps = `00400000-00452000 r-xp 00000000 08:02 173521      /usr/bin/cat
00651000-00652000 r--p 00051000 08:02 173521      /usr/bin/cat
00652000-00653000 rw-p 00052000 08:02 173521      /usr/bin/cat
7f55b4a00000-7f55b4bf9000 r-xp 00000000 08:02 262872      /lib/x86_64-linux-gnu/libc-2.15.so
7f55b4dfe000-7f55b4e02000 rw-p 00000000 00:00 0
7fff42a78000-7fff42a99000 rw-p 00000000 00:00 0          [stack]
`

func writeFakeMaps(t *testing.T, root string, pid int, contents string) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(pid))
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed creating fake proc dir: %s", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "maps"), []byte(contents), 0644); err != nil {
		t.Fatalf("failed writing fake maps file: %s", err)
	}
}

func TestEnumMemoryParsesRegionsInOrder(t *testing.T) {
	root := t.TempDir()
	writeFakeMaps(t, root, 1, sampleMaps)

	p := &Process{id: 1, config: Config{ProcfsRoot: root}}
	it, err := p.EnumMemory(0)
	if err != nil {
		t.Fatalf("unexpected error from EnumMemory: %s", err)
	}

	var prevEnd uint64
	count := 0
	for {
		page, ok := it.Next()
		if !ok {
			break
		}
		if page.Base < prevEnd {
			t.Logf("region at 0x%x overlaps or precedes previous region ending at 0x%x", page.Base, prevEnd)
			t.Fail()
		}
		prevEnd = page.Base + page.Size
		count++
	}
	if count != 6 {
		t.Logf("expected 6 regions, got %d", count)
		t.Fail()
	}
}

func TestEnumMemoryFiltersByStart(t *testing.T) {
	root := t.TempDir()
	writeFakeMaps(t, root, 1, sampleMaps)

	p := &Process{id: 1, config: Config{ProcfsRoot: root}}
	it, err := p.EnumMemory(0x7f55b4a00000)
	if err != nil {
		t.Fatalf("unexpected error from EnumMemory: %s", err)
	}

	page, ok := it.Next()
	if !ok {
		t.Fatalf("expected at least one region at or after start")
	}
	if page.Base != 0x7f55b4a00000 {
		t.Logf("expected first region returned to start at 0x7f55b4a00000, got 0x%x", page.Base)
		t.Fail()
	}
}

func TestParseMapsLineTranslatesPermissions(t *testing.T) {
	cases := []struct {
		perms string
		want  uint32
	}{
		{"r-xp", pageExecuteRead},
		{"rw-p", pageReadWrite},
		{"r--p", pageReadOnly},
		{"---p", pageNoAccess},
		{"rwxp", pageExecuteReadWrite},
	}
	for _, c := range cases {
		line := "00400000-00401000 " + c.perms + " 00000000 08:02 1 /bin/x"
		page, ok := parseMapsLine(line)
		if !ok {
			t.Fatalf("failed to parse well-formed maps line: %q", line)
		}
		if page.Protect != c.want {
			t.Logf("perms %q: expected protect 0x%x, got 0x%x", c.perms, c.want, page.Protect)
			t.Fail()
		}
	}
}

func TestFindModuleByNameFoldsAdjacentRegions(t *testing.T) {
	root := t.TempDir()
	writeFakeMaps(t, root, 1, sampleMaps)

	p := &Process{id: 1, config: Config{ProcfsRoot: root}}
	m, ok := p.FindModuleByName("cat")
	if !ok {
		t.Fatalf("expected to find module backed by /usr/bin/cat")
	}
	// three adjacent /usr/bin/cat lines fold into one module: base is the
	// lowest start, size is the sum of the three region sizes.
	wantBase, wantSize := uint64(0x00400000), uint64(0x52000+0x1000+0x1000)
	if m.Base != wantBase || m.Size != wantSize {
		t.Logf("expected folded module base=0x%x size=0x%x, got base=0x%x size=0x%x", wantBase, wantSize, m.Base, m.Size)
		t.Fail()
	}
}
