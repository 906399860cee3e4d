package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/collab"
	"github.com/wikiconstraint/engine/wikiconstraint/diskcache"
	"github.com/wikiconstraint/engine/wikiconstraint/eval"
	"github.com/wikiconstraint/engine/wikiconstraint/resolve"
	"github.com/wikiconstraint/engine/wikiconstraint/store"
	"github.com/wikiconstraint/engine/wikiconstraint/testfakes"
)

func main() {
	var oldPath, newPath, currentPath string
	var propsDir, entitiesDir, diskCachePath string
	var verbose, scoreOnly bool

	flag.StringVar(&oldPath, "old", "", "JSON revision file for the edit's starting state")
	flag.StringVar(&newPath, "new", "", "JSON revision file for the edit's ending state")
	flag.StringVar(&currentPath, "current", "", "JSON revision file for the entity's present state (optional)")
	flag.StringVar(&propsDir, "props", "", "directory of property-page JSON files (P2302 declarations)")
	flag.StringVar(&entitiesDir, "entities", "", "directory of item JSON files, for predicates that resolve a claim's target")
	flag.StringVar(&diskCachePath, "disk-cache", "", "BadgerDB directory for persisting fetched entity pages across runs (optional)")
	flag.BoolVar(&verbose, "verbose", false, "print every non-zero constraint contribution, not just the total")
	flag.BoolVar(&scoreOnly, "score-only", false, "print only the aggregate score")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -old old.json -new new.json [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Scores the change between two revisions against their declared constraints.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if oldPath == "" || newPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	old, err := loadRevision(oldPath)
	if err != nil {
		log.Fatalf("loading -old: %v", err)
	}
	newRev, err := loadRevision(newPath)
	if err != nil {
		log.Fatalf("loading -new: %v", err)
	}
	var current *wikiconstraint.Revision
	if currentPath != "" {
		current, err = loadRevision(currentPath)
		if err != nil {
			log.Fatalf("loading -current: %v", err)
		}
	}

	entities := testfakes.NewEntityStore()
	if err := loadDir(entities, entitiesDir); err != nil {
		log.Fatalf("loading -entities: %v", err)
	}
	if err := loadDir(entities, propsDir); err != nil {
		log.Fatalf("loading -props: %v", err)
	}
	entities.Put(old)
	entities.Put(newRev)
	if current != nil {
		entities.Put(current)
	}

	// A property page with no declared constraints is a normal, valid
	// state (most properties carry no P2302 statements at all), so a
	// missing file in -props is not an error: fall back to an empty
	// revision instead of propagating ErrTargetNotFound.
	baseLoad := entities.LoadFunc
	entities.LoadFunc = func(ctx context.Context, id wikiconstraint.EntityID) (*wikiconstraint.Revision, error) {
		if rev, ok := entities.Revisions[id]; ok {
			return rev, nil
		}
		if baseLoad != nil {
			if rev, err := baseLoad(ctx, id); err == nil {
				return rev, nil
			}
		}
		return wikiconstraint.NewRevision(id, 0), nil
	}

	var source collab.EntityStore = entities
	if diskCachePath != "" {
		dc, err := diskcache.Open(diskCachePath, entities)
		if err != nil {
			log.Fatalf("opening -disk-cache: %v", err)
		}
		defer dc.Close()
		source = dc
	}

	sparql := &testfakes.SparqlClient{}
	resolver := resolve.New(source, testfakes.NewRedirects())
	constraintsStore := store.New(source, sparql, resolver, testfakes.NewFileChecker(), "commons.wikimedia.org")
	evaluator := eval.New(constraintsStore)

	result, err := evaluator.EvaluateChange(context.Background(), old, newRev, current)
	if err != nil {
		log.Fatalf("evaluating change: %v", err)
	}

	render(result, verbose, scoreOnly)
}

// loadDir loads every *.json file in dir into store, keyed by each
// revision's own id (the filename is not interpreted). A dir of ""
// is a no-op, not an error: both -props and -entities are optional.
func loadDir(entities *testfakes.EntityStore, dir string) error {
	if dir == "" {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	for _, f := range files {
		rev, err := loadRevision(f)
		if err != nil {
			return err
		}
		entities.Put(rev)
	}
	return nil
}
