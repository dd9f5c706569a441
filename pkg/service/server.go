package service

import (
	"encoding/base64"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"

	"github.com/hivebrain/synapse-go/pkg/assimilation"
	"github.com/hivebrain/synapse-go/pkg/logging"
	"github.com/hivebrain/synapse-go/pkg/reputation"
)

/*
TrustServer exposes the assimilation pipeline and reputation ledger over
HTTP, so sidecar agents can evaluate shards without linking the core.
*/
type TrustServer struct {
	app    *fiber.App
	engine *assimilation.Engine
	ledger *reputation.Ledger
	audit  *logging.AuditLog
	addr   string
}

/*
EvaluateRequest is the POST /evaluate body. The payload travels base64
encoded since shard bytes are opaque.
*/
type EvaluateRequest struct {
	Magnet     string `json:"magnet"`
	PayloadB64 string `json:"payload_b64"`
	Policy     string `json:"policy,omitempty"`
}

/*
AttestationRequest is the POST /attestations body: the creator the
attestation counts against plus the signed attestation itself.
*/
type AttestationRequest struct {
	CreatorID   string                 `json:"creator_id"`
	Attestation reputation.Attestation `json:"attestation"`
}

/*
NewTrustServer wires the HTTP surface around an engine and ledger. audit may
be nil to disable decision logging.
*/
func NewTrustServer(addr string, engine *assimilation.Engine, ledger *reputation.Ledger, audit *logging.AuditLog) *TrustServer {
	srv := &TrustServer{
		app: fiber.New(fiber.Config{
			AppName:      "Synapse Trust Core",
			ServerHeader: "Synapse-Trust-Server",
		}),
		engine: engine,
		ledger: ledger,
		audit:  audit,
		addr:   addr,
	}

	srv.routes()
	return srv
}

func (srv *TrustServer) routes() {
	srv.app.Get("/healthz", func(ctx fiber.Ctx) error {
		return ctx.SendString("OK")
	})

	srv.app.Post("/evaluate", srv.handleEvaluate)
	srv.app.Post("/attestations", srv.handleAttestation)

	srv.app.Get("/reputation/:agentid", func(ctx fiber.Ctx) error {
		agentID := ctx.Params("agentid")

		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"agent_id":     agentID,
			"score":        srv.ledger.ScoreFor(agentID),
			"attestations": srv.ledger.AttestationCount(agentID),
		})
	})
}

func (srv *TrustServer) handleEvaluate(ctx fiber.Ctx) error {
	var req EvaluateRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).SendString("invalid evaluate request: " + err.Error())
	}

	payload, err := base64.StdEncoding.DecodeString(req.PayloadB64)

	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).SendString("payload_b64 is not valid base64")
	}

	var decision assimilation.Decision

	if req.Policy != "" {
		policy, err := assimilation.PolicyByName(req.Policy)

		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).SendString(err.Error())
		}

		decision = srv.engine.EvaluateWithPolicy(policy, req.Magnet, payload)
	} else {
		decision = srv.engine.Evaluate(req.Magnet, payload)
	}

	if srv.audit != nil {
		if err := srv.audit.Record(decision); err != nil {
			log.Error("failed to record decision", "error", err)
		}
	}

	status := fiber.StatusOK

	if !decision.Accepted() {
		status = fiber.StatusUnprocessableEntity
	}

	return ctx.Status(status).JSON(decision)
}

func (srv *TrustServer) handleAttestation(ctx fiber.Ctx) error {
	var req AttestationRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).SendString("invalid attestation request: " + err.Error())
	}

	if err := srv.ledger.Record(req.CreatorID, &req.Attestation); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"creator_id": req.CreatorID,
		"score":      srv.ledger.ScoreFor(req.CreatorID),
	})
}

/*
Run blocks serving HTTP on the configured address.
*/
func (srv *TrustServer) Run() error {
	log.Info("trust server listening", "addr", srv.addr)
	return srv.app.Listen(srv.addr)
}

/*
App exposes the fiber app for in-process testing.
*/
func (srv *TrustServer) App() *fiber.App {
	return srv.app
}
