package culture_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/culture"
	"github.com/pitabwire/culture/config"
	"github.com/pitabwire/culture/workerpool"
)

type CultureSuite struct {
	suite.Suite
	ctx      context.Context
	cultures *culture.Manager
}

func TestCultureSuite(t *testing.T) {
	suite.Run(t, new(CultureSuite))
}

func testConfig() *config.ConfigurationDefault {
	return &config.ConfigurationDefault{
		LogLevel:                          "error",
		SystemCulture:                     "en-US",
		SystemUICulture:                   "en-US",
		WorkerPoolCPUFactorForWorkerCount: 1,
		WorkerPoolCapacity:                10,
		WorkerPoolCount:                   1,
		WorkerPoolExpiryDuration:          "1s",
	}
}

func (s *CultureSuite) SetupTest() {
	ctx, cultures, err := culture.NewManager(context.Background(), culture.WithConfig(testConfig()))
	s.Require().NoError(err)
	s.ctx = ctx
	s.cultures = cultures
}

func (s *CultureSuite) TearDownTest() {
	s.Require().NoError(s.cultures.Shutdown(s.ctx))
}

func (s *CultureSuite) resolve(name string) *culture.Culture {
	c, err := s.cultures.Resolve(name)
	s.Require().NoError(err)
	return c
}

func (s *CultureSuite) TestCurrentCulture() {
	ctx, _ := s.cultures.Enter(s.ctx)

	defaultCulture := s.cultures.Current(ctx)
	s.Require().False(defaultCulture.Equal(culture.Invariant()))

	newName := "ja-JP"
	if defaultCulture.Name() == "ja-JP" {
		newName = "ar-SA"
	}
	newCulture := s.resolve(newName)

	ctx = s.cultures.SetCurrent(ctx, newCulture)
	s.True(s.cultures.Current(ctx).Equal(newCulture))

	phonebook := s.resolve("de-DE_phoneb")
	ctx = s.cultures.SetCurrent(ctx, phonebook)
	s.True(s.cultures.Current(ctx).Equal(phonebook))
	s.Equal("de-DE_phoneb", s.cultures.Current(ctx).CompareInfo().Name())

	ctx = s.cultures.SetCurrent(ctx, defaultCulture)
	s.True(s.cultures.Current(ctx).Equal(defaultCulture))
}

func (s *CultureSuite) TestCurrentUICulture() {
	ctx, _ := s.cultures.Enter(s.ctx)

	defaultUICulture := s.cultures.CurrentUI(ctx)
	s.Require().False(defaultUICulture.Equal(culture.Invariant()))

	newUICulture := s.resolve("ja-JP")
	ctx = s.cultures.SetCurrentUI(ctx, newUICulture)
	s.True(s.cultures.CurrentUI(ctx).Equal(newUICulture))

	phonebook := s.resolve("de-DE_phoneb")
	ctx = s.cultures.SetCurrentUI(ctx, phonebook)
	s.True(s.cultures.CurrentUI(ctx).Equal(phonebook))
	s.Equal("de-DE_phoneb", s.cultures.CurrentUI(ctx).CompareInfo().Name())

	ctx = s.cultures.SetCurrentUI(ctx, defaultUICulture)
	s.True(s.cultures.CurrentUI(ctx).Equal(defaultUICulture))
}

func (s *CultureSuite) TestCultureAndUICultureAreIndependent() {
	ctx, state := s.cultures.Enter(s.ctx)
	uiBefore := state.CurrentUI()

	ctx = s.cultures.SetCurrent(ctx, s.resolve("ja-JP"))
	s.True(s.cultures.CurrentUI(ctx).Equal(uiBefore))

	cultureBefore := s.cultures.Current(ctx)
	ctx = s.cultures.SetCurrentUI(ctx, s.resolve("sw-KE"))
	s.True(s.cultures.Current(ctx).Equal(cultureBefore))
	s.Equal("sw-KE", s.cultures.CurrentUI(ctx).Name())
}

func (s *CultureSuite) TestDefaultThreadCurrentCulture() {
	ctx, _ := s.cultures.Enter(s.ctx)
	defaults := s.cultures.Defaults()

	originalCulture := s.cultures.Current(ctx)
	originalUICulture := s.cultures.CurrentUI(ctx)
	originalDefault := defaults.Culture()
	originalDefaultUI := defaults.UICulture()

	ja := s.resolve("ja-JP")
	s.Require().False(originalCulture.Equal(ja))
	s.Require().False(originalUICulture.Equal(ja))

	defaults.SetCulture(ja)
	defaults.SetUICulture(ja)

	type observed struct{ culture, ui *culture.Culture }
	seen := make(chan observed, 1)

	task := s.cultures.Go(ctx, func(ctx context.Context) error {
		seen <- observed{s.cultures.Current(ctx), s.cultures.CurrentUI(ctx)}
		return nil
	})
	s.Require().NoError(task.Wait(ctx))

	got := <-seen
	s.True(got.culture.Equal(ja))
	s.True(got.ui.Equal(ja))
	s.False(s.cultures.Current(ctx).Equal(ja), "spawning context keeps its own culture")

	defaults.SetCulture(originalDefault)
	defaults.SetUICulture(originalDefaultUI)

	task = s.cultures.Go(ctx, func(ctx context.Context) error {
		seen <- observed{s.cultures.Current(ctx), s.cultures.CurrentUI(ctx)}
		return nil
	})
	s.Require().NoError(task.Wait(ctx))

	got = <-seen
	s.False(got.culture.Equal(ja))
	s.False(got.ui.Equal(ja))
	s.True(s.cultures.Current(ctx).Equal(originalCulture))
	s.True(s.cultures.CurrentUI(ctx).Equal(originalUICulture))
}

func (s *CultureSuite) TestSpawnIgnoresSpawnerCulture() {
	ctx := s.cultures.SetCurrent(s.ctx, s.resolve("ar-SA"))

	seen := make(chan string, 1)
	task := s.cultures.Go(ctx, func(ctx context.Context) error {
		seen <- s.cultures.Current(ctx).Name()
		return nil
	})
	s.Require().NoError(task.Wait(ctx))
	s.NotEmpty(task.ID())

	s.Equal("en-US", <-seen)
}

func (s *CultureSuite) TestSpawnedMutationsStayIsolated() {
	ctx, _ := s.cultures.Enter(s.ctx)

	changed := make(chan struct{})
	release := make(chan struct{})
	seen := make(chan string, 1)

	mutator := s.cultures.Go(ctx, func(ctx context.Context) error {
		s.cultures.SetCurrent(ctx, s.resolve("ja-JP"))
		close(changed)
		<-release
		return nil
	})

	observer := s.cultures.Go(ctx, func(ctx context.Context) error {
		<-changed
		seen <- s.cultures.Current(ctx).Name()
		return nil
	})

	s.Require().NoError(observer.Wait(ctx))
	close(release)
	s.Require().NoError(mutator.Wait(ctx))

	s.Equal("en-US", <-seen)
	s.Equal("en-US", s.cultures.Current(ctx).Name())
}

func (s *CultureSuite) TestLaterDefaultChangesDoNotReachRunningWork() {
	s.cultures.Defaults().SetCulture(s.resolve("ja-JP"))
	defer s.cultures.Defaults().Reset()

	proceed := make(chan struct{})
	seen := make(chan string, 1)

	task := s.cultures.Go(s.ctx, func(ctx context.Context) error {
		<-proceed
		seen <- s.cultures.Current(ctx).Name()
		return nil
	})

	s.cultures.Defaults().SetCulture(s.resolve("ar-SA"))
	close(proceed)
	s.Require().NoError(task.Wait(s.ctx))

	s.Equal("ja-JP", <-seen)
}

func (s *CultureSuite) TestRootContextKeepsCulturesAcrossDefaultChanges() {
	defaults := s.cultures.Defaults()
	defer defaults.Reset()

	s.Require().NotNil(culture.FromContext(s.ctx))
	s.Equal("en-US", s.cultures.Current(s.ctx).Name())

	defaults.SetCulture(s.resolve("ja-JP"))
	defaults.SetUICulture(s.resolve("sw-KE"))

	s.Equal("en-US", s.cultures.Current(s.ctx).Name())
	s.Equal("en-US", s.cultures.CurrentUI(s.ctx).Name())

	seen := make(chan string, 1)
	task := s.cultures.Go(s.ctx, func(ctx context.Context) error {
		seen <- s.cultures.Current(ctx).Name() + "/" + s.cultures.CurrentUI(ctx).Name()
		return nil
	})
	s.Require().NoError(task.Wait(s.ctx))
	s.Equal("ja-JP/sw-KE", <-seen)
	s.Equal("en-US", s.cultures.Current(s.ctx).Name())
}

func (s *CultureSuite) TestSubmitJobPanicClosesJob() {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	job := workerpool.NewJob(func(_ context.Context, _ workerpool.JobResultPipe[string]) error {
		panic("boom")
	})
	s.Require().NoError(culture.SubmitJob(ctx, s.cultures, job))

	err := workerpool.ConsumeResultStream(ctx, job, func(string) {})
	s.Require().ErrorIs(err, workerpool.ErrJobPanicked)
	s.Require().NoError(ctx.Err())
}

func (s *CultureSuite) TestTaskPanicBecomesError() {
	task := s.cultures.Go(s.ctx, func(_ context.Context) error {
		panic("boom")
	})
	s.Require().ErrorContains(task.Wait(s.ctx), "panicked")
}

func (s *CultureSuite) TestGroupSnapshotsAtSpawn() {
	defaults := s.cultures.Defaults()
	defer defaults.Reset()

	results := make(chan string, 2)
	group := s.cultures.Group(s.ctx)

	defaults.SetUICulture(s.resolve("ja-JP"))
	group.Go(func(ctx context.Context) error {
		results <- s.cultures.CurrentUI(ctx).Name()
		return nil
	})

	defaults.SetUICulture(s.resolve("sw-KE"))
	group.Go(func(ctx context.Context) error {
		results <- s.cultures.CurrentUI(ctx).Name()
		return nil
	})

	s.Require().NoError(group.Wait())
	close(results)

	var names []string
	for name := range results {
		names = append(names, name)
	}
	s.ElementsMatch([]string{"ja-JP", "sw-KE"}, names)
}

func (s *CultureSuite) TestGroupReportsFirstError() {
	group := s.cultures.Group(s.ctx)
	group.SetLimit(1)

	failure := errors.New("failed")
	group.Go(func(_ context.Context) error { return failure })
	group.Go(func(_ context.Context) error { return nil })

	s.Require().ErrorIs(group.Wait(), failure)
}

func (s *CultureSuite) TestSubmitJobSnapshotsDefaults() {
	s.cultures.Defaults().SetCulture(s.resolve("ja-JP"))
	defer s.cultures.Defaults().Reset()

	ctx := s.cultures.SetCurrent(s.ctx, s.resolve("ar-SA"))

	job := workerpool.NewJob(func(ctx context.Context, pipe workerpool.JobResultPipe[string]) error {
		return pipe.WriteResult(ctx, s.cultures.Current(ctx).Name())
	})
	s.Require().NoError(culture.SubmitJob(ctx, s.cultures, job))

	res, ok := job.ReadResult(ctx)
	s.Require().True(ok)
	s.Require().False(res.IsError())
	s.Equal("ja-JP", res.Item())
	s.Equal("ar-SA", s.cultures.Current(ctx).Name())
}

func (s *CultureSuite) TestUnknownCultureLeavesStateUnchanged() {
	ctx := s.cultures.SetCurrent(s.ctx, s.resolve("ja-JP"))
	ctx = s.cultures.SetCurrentUI(ctx, s.resolve("sw-KE"))

	for _, name := range []string{"xx-YY", "not a culture", "ja-JP_phoneb", "de-DE_bogus", "und"} {
		s.Run(name, func() {
			_, err := s.cultures.Resolve(name)
			s.Require().ErrorIs(err, culture.ErrUnknownCulture)

			var unknown *culture.UnknownCultureError
			s.Require().ErrorAs(err, &unknown)
			s.Equal(name, unknown.Name)

			next, err := s.cultures.SetCurrentName(ctx, name)
			s.Require().ErrorIs(err, culture.ErrUnknownCulture)
			s.Equal(ctx, next)

			next, err = s.cultures.SetCurrentUIName(ctx, name)
			s.Require().ErrorIs(err, culture.ErrUnknownCulture)
			s.Equal(ctx, next)

			s.Equal("ja-JP", s.cultures.Current(ctx).Name())
			s.Equal("sw-KE", s.cultures.CurrentUI(ctx).Name())

			s.Require().ErrorIs(s.cultures.SetDefaultCultureName(ctx, name), culture.ErrUnknownCulture)
			s.Nil(s.cultures.Defaults().Culture())
		})
	}
}

func (s *CultureSuite) TestSetByName() {
	ctx, err := s.cultures.SetCurrentName(s.ctx, "fr-FR")
	s.Require().NoError(err)
	ctx, err = s.cultures.SetCurrentUIName(ctx, "ja-jp")
	s.Require().NoError(err)

	s.Equal("fr-FR", s.cultures.Current(ctx).Name())
	s.Equal("ja-JP", s.cultures.CurrentUI(ctx).Name())

	s.Require().NoError(s.cultures.SetDefaultCultureName(ctx, "de-DE"))
	s.Require().NoError(s.cultures.SetDefaultUICultureName(ctx, "de-DE_phoneb"))
	s.Equal("de-DE", s.cultures.Current(context.Background()).Name())
	s.Equal("de-DE_phoneb", s.cultures.CurrentUI(context.Background()).Name())

	s.Require().NoError(s.cultures.SetDefaultCultureName(ctx, ""))
	s.Require().NoError(s.cultures.SetDefaultUICultureName(ctx, ""))
	s.Equal("en-US", s.cultures.Current(context.Background()).Name())
	s.Equal("en-US", s.cultures.CurrentUI(context.Background()).Name())
}

func (s *CultureSuite) TestResolveAny() {
	c, err := s.cultures.ResolveAny("", "xx-YY", "sw-KE", "ja-JP")
	s.Require().NoError(err)
	s.Equal("sw-KE", c.Name())

	_, err = s.cultures.ResolveAny("xx-YY", "xx")
	s.Require().ErrorIs(err, culture.ErrUnknownCulture)

	_, err = s.cultures.ResolveAny()
	s.Require().ErrorIs(err, culture.ErrUnknownCulture)
}

func (s *CultureSuite) TestEnterReusesState() {
	bare := context.Background()
	ctx, state := s.cultures.Enter(bare)
	again, sameState := s.cultures.Enter(ctx)

	s.Equal(ctx, again)
	s.Same(state, sameState)
	s.Nil(culture.FromContext(bare))

	root, rootState := s.cultures.Enter(s.ctx)
	s.Equal(s.ctx, root)
	s.Same(culture.FromContext(s.ctx), rootState)
}

func (s *CultureSuite) TestManagerConfiguredDefaults() {
	cfg := testConfig()
	cfg.DefaultThreadCurrentCulture = "fr-FR"
	cfg.DefaultThreadCurrentUICulture = "sw-KE"

	ctx, cultures, err := culture.NewManager(context.Background(), culture.WithConfig(cfg))
	s.Require().NoError(err)
	defer func() { _ = cultures.Shutdown(ctx) }()

	s.Equal("fr-FR", cultures.Current(ctx).Name())
	s.Equal("sw-KE", cultures.CurrentUI(ctx).Name())
	s.Equal("en-US", cultures.Defaults().System().Name())
	s.Same(cfg, config.FromContext[*config.ConfigurationDefault](ctx))

	cfg.DefaultThreadCurrentCulture = "xx-YY"
	_, _, err = culture.NewManager(context.Background(), culture.WithConfig(cfg))
	s.Require().ErrorIs(err, culture.ErrUnknownCulture)
}

func (s *CultureSuite) TestUnresolvableSystemCultureFallsBackToInvariant() {
	cfg := testConfig()
	cfg.SystemCulture = "xx-YY"

	ctx, cultures, err := culture.NewManager(context.Background(), culture.WithConfig(cfg))
	s.Require().NoError(err)
	defer func() { _ = cultures.Shutdown(ctx) }()

	s.True(cultures.Current(ctx).IsInvariant())
	s.Equal("en-US", cultures.CurrentUI(ctx).Name())
}

func (s *CultureSuite) TestSupportedCultures() {
	ctx, cultures, err := culture.NewManager(context.Background(),
		culture.WithConfig(testConfig()),
		culture.WithSupportedCultures("en-US", "sw-KE"))
	s.Require().NoError(err)
	defer func() { _ = cultures.Shutdown(ctx) }()

	_, err = cultures.Resolve("sw-KE")
	s.Require().NoError(err)

	_, err = cultures.Resolve("ja-JP")
	s.Require().ErrorIs(err, culture.ErrUnknownCulture)

	invariant, err := cultures.Resolve("")
	s.Require().NoError(err)
	s.True(invariant.IsInvariant())

	swahili, err := cultures.Resolve("sw-KE")
	s.Require().NoError(err)
	s.True(swahili.Parent().IsInvariant(), "sw is outside the supported cultures")
}
