package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/chat-assistant/internal/agent"
	"github.com/example/chat-assistant/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// SchedulingServiceDeps captures dependencies for constructing a scheduling
// service.
type SchedulingServiceDeps struct {
	Events      application.EventStore
	Members     application.MembershipProvider
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewSchedulingService builds a scheduling service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewSchedulingService(deps SchedulingServiceDeps) *application.SchedulingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewSchedulingService(
		deps.Events,
		deps.Members,
		idGen,
		now,
		deps.Logger,
	)
}

// PlanServiceDeps captures dependencies for constructing a plan service. The
// agent components come from the caller because they wrap model and retrieval
// stubs specific to each test.
type PlanServiceDeps struct {
	Classifier  *agent.Classifier
	Executor    *agent.Executor
	Summarizer  *agent.Summarizer
	Plans       application.PlanStore
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewPlanService builds a plan service using the supplied dependencies.
func (f *ServiceFactory) NewPlanService(deps PlanServiceDeps) *application.PlanService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewPlanService(
		deps.Classifier,
		deps.Executor,
		deps.Summarizer,
		deps.Plans,
		idGen,
		now,
		deps.Logger,
	)
}

// MemberServiceDeps captures dependencies for constructing a member service.
type MemberServiceDeps struct {
	Members    application.MemberDirectory
	Invalidate func(conversationID string)
	Logger     *slog.Logger
}

// NewMemberService builds a member service using the supplied dependencies.
func (f *ServiceFactory) NewMemberService(deps MemberServiceDeps) *application.MemberService {
	invalidate := deps.Invalidate
	if invalidate == nil {
		invalidate = func(string) {}
	}
	return application.NewMemberService(
		deps.Members,
		invalidate,
		deps.Logger,
	)
}
