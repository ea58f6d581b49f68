package servehttp_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"greenroom/bizerror"
	"greenroom/domain"
	"greenroom/flow"
	"greenroom/servehttp"
	"greenroom/session"
	"greenroom/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type transitionExecutorMock struct {
	executeFunc func(creation *flow.TransitionCreation, sec *session.Context) (*flow.TransitionResult, error)
}

func (m *transitionExecutorMock) Execute(creation *flow.TransitionCreation, sec *session.Context) (*flow.TransitionResult, error) {
	return m.executeFunc(creation, sec)
}

var _ = ginkgo.Describe("TransitionHandler", func() {
	var (
		router   *gin.Engine
		executor *transitionExecutorMock
	)

	ginkgo.BeforeEach(func() {
		executor = &transitionExecutorMock{}
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		servehttp.RegisterTransitionHandler(router, executor)
	})

	ginkgo.It("should create a transition and return its result", func() {
		demoTime := types.CurrentTimestamp()
		executor.executeFunc = func(creation *flow.TransitionCreation, sec *session.Context) (*flow.TransitionResult, error) {
			Expect(creation.EntityType).To(Equal(domain.EntityTypeProgram))
			Expect(creation.EntityID).To(Equal(types.ID(42)))
			Expect(creation.ToState).To(Equal("pending_approval"))
			Expect(creation.Notes).To(Equal("ready"))
			return &flow.TransitionResult{EntityType: creation.EntityType, EntityID: creation.EntityID,
				FromState: "draft", ToState: creation.ToState, HistoryID: 123, Timestamp: demoTime}, nil
		}

		req, _ := http.NewRequest(http.MethodPost, "/v1/transitions", strings.NewReader(
			`{"entityType": "program", "entityId": 42, "toState": "pending_approval", "notes": "ready"}`))
		status, body, err := testinfra.ExecuteRequest(req, router)
		Expect(err).To(BeNil())
		Expect(status).To(Equal(http.StatusCreated))
		timeBytes, _ := json.Marshal(demoTime)
		Expect(body).To(MatchJSON(fmt.Sprintf(`{"entityType": "program", "entityId": "42",
			"fromState": "draft", "toState": "pending_approval", "historyId": "123", "timestamp": %s}`, timeBytes)))
	})

	ginkgo.It("should reject an unparsable body", func() {
		req, _ := http.NewRequest(http.MethodPost, "/v1/transitions", strings.NewReader(`rubbish`))
		status, body, err := testinfra.ExecuteRequest(req, router)
		Expect(err).To(BeNil())
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring(`"code":"common.bad_param"`))
	})

	ginkgo.It("should reject a body missing required properties", func() {
		req, _ := http.NewRequest(http.MethodPost, "/v1/transitions", strings.NewReader(`{"entityType": "program"}`))
		status, body, err := testinfra.ExecuteRequest(req, router)
		Expect(err).To(BeNil())
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring(`"code":"common.bad_param"`))
	})

	ginkgo.It("should render an invalid transition with the allowed states", func() {
		executor.executeFunc = func(creation *flow.TransitionCreation, sec *session.Context) (*flow.TransitionResult, error) {
			return nil, &bizerror.ErrInvalidTransition{EntityType: "program", CurrentState: "aired",
				ToState: "draft", AllowedStates: []string{}}
		}

		req, _ := http.NewRequest(http.MethodPost, "/v1/transitions", strings.NewReader(
			`{"entityType": "program", "entityId": 42, "toState": "draft"}`))
		status, body, err := testinfra.ExecuteRequest(req, router)
		Expect(err).To(BeNil())
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code": "workflow.invalid_transition",
			"message": "transition from aired to draft is not defined for program",
			"data": {"entityType": "program", "currentState": "aired", "toState": "draft", "allowedStates": []}}`))
	})

	ginkgo.It("should render forbidden and unauthenticated failures", func() {
		executor.executeFunc = func(creation *flow.TransitionCreation, sec *session.Context) (*flow.TransitionResult, error) {
			return nil, bizerror.ErrForbidden
		}
		req, _ := http.NewRequest(http.MethodPost, "/v1/transitions", strings.NewReader(
			`{"entityType": "program", "entityId": 42, "toState": "draft"}`))
		status, body, err := testinfra.ExecuteRequest(req, router)
		Expect(err).To(BeNil())
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"code": "security.forbidden", "message": "access forbidden", "data": null}`))

		executor.executeFunc = func(creation *flow.TransitionCreation, sec *session.Context) (*flow.TransitionResult, error) {
			return nil, bizerror.ErrUnauthenticated
		}
		req, _ = http.NewRequest(http.MethodPost, "/v1/transitions", strings.NewReader(
			`{"entityType": "program", "entityId": 42, "toState": "draft"}`))
		status, body, err = testinfra.ExecuteRequest(req, router)
		Expect(err).To(BeNil())
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code": "common.unauthenticated", "message": "unauthenticated", "data": null}`))
	})

	ginkgo.It("should render a state consistency failure as a server error", func() {
		executor.executeFunc = func(creation *flow.TransitionCreation, sec *session.Context) (*flow.TransitionResult, error) {
			return nil, &bizerror.ErrStateInconsistent{EntityType: "program", EntityID: 42,
				EntityState: "approved", HistoryState: "draft"}
		}

		req, _ := http.NewRequest(http.MethodPost, "/v1/transitions", strings.NewReader(
			`{"entityType": "program", "entityId": 42, "toState": "scheduled"}`))
		status, body, err := testinfra.ExecuteRequest(req, router)
		Expect(err).To(BeNil())
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(ContainSubstring(`"code":"workflow.state_inconsistent"`))
	})
})
