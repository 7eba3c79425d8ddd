package builder

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"vdx/internal/errors"
	"vdx/internal/slogutil"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func sampleProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"vdx.toml":                    "[project]\nname = \"Arena\"\n",
		".gitignore":                  "Generated/\n",
		"Foo.verse":                   "Bar<public> := module:\n    Baz<public> := class:\n",
		"UI/widgets.verse":            "Widgets<public> := module:\n    button<public> := class:\n",
		"Empty.verse":                 "# nothing here\n",
		"notes.txt":                   "Fake<public> := class:\n",
		"node_modules/dep.verse":      "Dep<public> := class:\n",
		"Generated/gen.verse":         "Gen<public> := class:\n",
		"Intermediate/build.verse":    "Tmp<public> := class:\n",
		"Content/Deep/Nested/a.verse": "Deep<public> := struct:\n",
	})
	return root
}

func TestDiscover(t *testing.T) {
	root := sampleProject(t)
	b := New(DefaultOptions(), slogutil.NewDiscardLogger())
	files, err := b.Discover(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Content/Deep/Nested/a.verse", "Empty.verse", "Foo.verse", "UI/widgets.verse"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("Discover() = %v, want %v", files, want)
	}
}

func TestDiscoverWithoutGitignore(t *testing.T) {
	root := sampleProject(t)
	opts := DefaultOptions()
	opts.UseGitignore = false
	files, err := New(opts, slogutil.NewDiscardLogger()).Discover(root)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range files {
		if f == "Generated/gen.verse" {
			found = true
		}
	}
	if !found {
		t.Errorf("Discover() = %v, want Generated/gen.verse included", files)
	}
}

func TestBuildFullTree(t *testing.T) {
	root := sampleProject(t)
	var progress []Progress
	opts := DefaultOptions()
	opts.Progress = func(p Progress) { progress = append(progress, p) }

	tree, err := New(opts, slogutil.NewDiscardLogger()).BuildFullTree(context.Background(), root)
	if err != nil {
		t.Fatalf("BuildFullTree() error = %v", err)
	}
	if tree.ProjectName != "Arena" {
		t.Errorf("ProjectName = %q", tree.ProjectName)
	}
	if got := tree.FileIndex["Foo.verse"]; !reflect.DeepEqual(got, []string{"Bar", "Baz"}) {
		t.Errorf("FileIndex[Foo.verse] = %v", got)
	}
	if names, ok := tree.FileIndex["Empty.verse"]; !ok || len(names) != 0 {
		t.Errorf("FileIndex[Empty.verse] = %v, %v; want present and empty", names, ok)
	}
	if tree.NodeCount() != 5 {
		t.Errorf("NodeCount() = %d, want 5", tree.NodeCount())
	}
	for _, n := range tree.Root.Children {
		if len(n.Children) != 0 {
			t.Errorf("%s has children; tree must stay flat", n.FullPath)
		}
		if n.FullPath == "/Bar/Baz" && n.SourceFile != "Foo.verse" {
			t.Errorf("Baz SourceFile = %q", n.SourceFile)
		}
	}
	if err := tree.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	if len(progress) != 4 {
		t.Fatalf("progress calls = %d, want 4", len(progress))
	}
	last := progress[len(progress)-1]
	if last.Current != 4 || last.Total != 4 {
		t.Errorf("last progress = %+v", last)
	}
}

func TestBuildFullTreeIdentityUnresolved(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"Foo.verse": "Bar<public> := module:\n"})
	tree, err := New(DefaultOptions(), slogutil.NewDiscardLogger()).BuildFullTree(context.Background(), root)
	if tree != nil {
		t.Error("tree returned for unresolvable identity")
	}
	if !errors.Is(err, errors.IdentityUnresolved) {
		t.Errorf("error = %v, want IDENTITY_UNRESOLVED", err)
	}
}

func TestBuildFullTreeConfiguredName(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"Foo.verse": "Bar<public> := module:\n"})
	opts := DefaultOptions()
	opts.ProjectName = "Configured"
	tree, err := New(opts, slogutil.NewDiscardLogger()).BuildFullTree(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if tree.ProjectName != "Configured" || tree.NodeCount() != 1 {
		t.Errorf("tree = %s with %d nodes", tree.ProjectName, tree.NodeCount())
	}
}

func TestBuildFullTreeEmptyProject(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"vdx.toml": "[project]\nname = \"Empty\"\n"})
	tree, err := New(DefaultOptions(), slogutil.NewDiscardLogger()).BuildFullTree(context.Background(), root)
	if err != nil {
		t.Fatalf("empty project error = %v", err)
	}
	if tree == nil || tree.NodeCount() != 0 || len(tree.FileIndex) != 0 {
		t.Errorf("want empty tree, got %+v", tree)
	}
}

func TestBuildFullTreeCancelled(t *testing.T) {
	root := sampleProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(DefaultOptions(), slogutil.NewDiscardLogger()).BuildFullTree(ctx, root)
	if err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestExtractFile(t *testing.T) {
	root := sampleProject(t)
	b := New(DefaultOptions(), slogutil.NewDiscardLogger())

	nodes, exists, err := b.ExtractFile(root, "Foo.verse")
	if err != nil || !exists || len(nodes) != 2 {
		t.Fatalf("ExtractFile(Foo.verse) = %d nodes, %v, %v", len(nodes), exists, err)
	}

	nodes, exists, err = b.ExtractFile(root, "Gone.verse")
	if err != nil || exists || nodes != nil {
		t.Errorf("ExtractFile(Gone.verse) = %v, %v, %v", nodes, exists, err)
	}

	if _, _, err := b.ExtractFile(root, "../outside.verse"); !errors.Is(err, errors.InvalidPath) {
		t.Errorf("ExtractFile(../outside.verse) error = %v", err)
	}
}
