// Package culture tracks the current culture and current UI culture of execution
// contexts.
//
// An execution context is a goroutine together with the context.Context it runs
// with. Its culture pair lives in a State stored on that context. Process wide
// Defaults decide what a new execution context starts with: work started through
// Manager.Go, Manager.Group or SubmitJob snapshots the defaults once, when it is
// spawned, and never sees the spawner's own culture or later default changes.
//
//	ctx, cultures, err := culture.NewManager(ctx)
//	if err != nil {
//		return err
//	}
//
//	ja, _ := cultures.Resolve("ja-JP")
//	cultures.Defaults().SetCulture(ja)
//
//	task := cultures.Go(ctx, func(ctx context.Context) error {
//		fmt.Println(cultures.Current(ctx)) // ja-JP
//		return nil
//	})
//	_ = task.Wait(ctx)
//	fmt.Println(cultures.Current(ctx)) // unchanged, ctx kept its snapshot
//
// Locale data comes from golang.org/x/text. Names may carry an alternate sort
// suffix, e.g. "de-DE_phoneb" selects German phonebook collation.
package culture
