package llmclient

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/fourthplaces/rootsignal/internal/llmclient/genpb"
)

// GRPCClient implements Extractor, Embedder, ImageDescriber, Transcriber,
// Clusterer, and Linter over a single gRPC connection, the same
// one-connection shape as the teacher's llm.Client — there, one
// connection served GenerateWithThinking; here it serves the six RPCs
// proto/llmclient.proto declares.
type GRPCClient struct {
	conn   *grpc.ClientConn
	client genpb.LLMServiceClient
}

// NewGRPCClient dials addr with insecure transport credentials, matching
// the teacher's own NewClient — the LLM service sits on a private
// network segment in both systems, so TLS termination happens upstream
// of this connection rather than inside it.
func NewGRPCClient(addr string) (*GRPCClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect to llm service at %s: %w", addr, err)
	}
	slog.Info("llmclient: connected", "addr", addr)
	return &GRPCClient{conn: conn, client: genpb.NewLLMServiceClient(conn)}, nil
}

// Close closes the underlying gRPC connection.
func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// Extract implements Extractor.
func (c *GRPCClient) Extract(ctx context.Context, markdown, region string, tagVocabulary []string, actorContext []ActorContext) ([]ExtractedSignal, error) {
	pbActors := make([]*genpb.ActorContext, len(actorContext))
	for i, a := range actorContext {
		pbActors[i] = &genpb.ActorContext{Name: a.Name, EntityType: a.EntityType, CanonicalId: a.CanonicalID}
	}

	resp, err := c.client.Extract(ctx, &genpb.ExtractRequest{
		Markdown:      markdown,
		Region:        region,
		TagVocabulary: tagVocabulary,
		ActorContext:  pbActors,
	})
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	signals := make([]ExtractedSignal, len(resp.Signals))
	for i, s := range resp.Signals {
		signals[i] = fromPBSignal(s)
	}
	return signals, nil
}

func fromPBSignal(s *genpb.ExtractedSignal) ExtractedSignal {
	entities := make([]MentionedEntity, len(s.MentionedEntities))
	for i, e := range s.MentionedEntities {
		entities[i] = MentionedEntity{Name: e.Name, EntityType: e.EntityType, Role: e.Role}
	}
	tags := make([]ResourceTag, len(s.ResourceTags))
	for i, tg := range s.ResourceTags {
		tags[i] = ResourceTag{Tag: tg.Tag, Role: ResourceTagRole(tg.Role)}
	}

	out := ExtractedSignal{
		SignalType:        s.SignalType,
		Title:             s.Title,
		Summary:           s.Summary,
		SourceURL:         s.SourceUrl,
		ContentDate:       s.ContentDate,
		AboutLat:          s.AboutLat,
		AboutLng:          s.AboutLng,
		AboutLocationName: s.AboutLocationName,
		MentionedEntities: entities,
		ResourceTags:      tags,
	}

	switch {
	case s.Gathering != nil:
		out.Gathering = &GatheringFields{
			StartsAt: s.Gathering.StartsAt, EndsAt: s.Gathering.EndsAt,
			Organizer: s.Gathering.Organizer, IsRecurring: s.Gathering.IsRecurring, ActionURL: s.Gathering.ActionUrl,
		}
	case s.Aid != nil:
		out.Aid = &AidFields{Availability: s.Aid.Availability, IsOngoing: s.Aid.IsOngoing, ActionURL: s.Aid.ActionUrl}
	case s.Need != nil:
		out.Need = &NeedFields{Urgency: s.Need.Urgency, WhatNeeded: s.Need.WhatNeeded, Goal: s.Need.Goal}
	case s.Notice != nil:
		out.Notice = &NoticeFields{
			Severity: s.Notice.Severity, Category: s.Notice.Category,
			EffectiveDate: s.Notice.EffectiveDate, SourceAuthority: s.Notice.SourceAuthority,
		}
	case s.Tension != nil:
		out.Tension = &TensionFields{Severity: s.Tension.Severity, WhatWouldHelp: s.Tension.WhatWouldHelp}
	}
	return out
}

// Embed implements Embedder.
func (c *GRPCClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.EmbedBatch(ctx, &genpb.EmbedRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("embed_batch: %w", err)
	}
	out := make([][]float32, len(resp.Vectors))
	for i, v := range resp.Vectors {
		out[i] = v.Values
	}
	return out, nil
}

// DescribeImage implements ImageDescriber.
func (c *GRPCClient) DescribeImage(ctx context.Context, data []byte, mimeType, prompt string) (string, error) {
	resp, err := c.client.DescribeImage(ctx, &genpb.DescribeImageRequest{Data: data, MimeType: mimeType, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("describe_image: %w", err)
	}
	return resp.Description, nil
}

// Transcribe implements Transcriber.
func (c *GRPCClient) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	resp, err := c.client.Transcribe(ctx, &genpb.TranscribeRequest{Data: data, MimeType: mimeType})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return resp.Transcript, nil
}

// Cluster implements Clusterer.
func (c *GRPCClient) Cluster(ctx context.Context, batch ClusterBatch) (ClusterVerdict, error) {
	pbSignals := make([]*genpb.ClusterSignal, len(batch.Signals))
	for i, s := range batch.Signals {
		pbSignals[i] = &genpb.ClusterSignal{SignalId: s.SignalID, SignalType: s.SignalType, Title: s.Title, Summary: s.Summary, CauseHeat: s.CauseHeat}
	}
	pbSituations := make([]*genpb.ClusterSituation, len(batch.Situations))
	for i, s := range batch.Situations {
		pbSituations[i] = &genpb.ClusterSituation{SituationId: s.SituationID, Headline: s.Headline, Lede: s.Lede, Arc: s.Arc}
	}

	resp, err := c.client.Cluster(ctx, &genpb.ClusterRequest{Region: batch.Region, Signals: pbSignals, Situations: pbSituations})
	if err != nil {
		return ClusterVerdict{}, fmt.Errorf("cluster: %w", err)
	}

	verdict := ClusterVerdict{}
	for _, a := range resp.Assignments {
		verdict.Assignments = append(verdict.Assignments, SignalAssignment{SignalID: a.SignalId, SituationID: a.SituationId, NewSituationID: a.NewSituationId})
	}
	for _, n := range resp.NewSituations {
		verdict.NewSituations = append(verdict.NewSituations, NewSituationSpec{TempID: n.TempId, Headline: n.Headline, Lede: n.Lede})
	}
	for _, d := range resp.Dispatches {
		verdict.Dispatches = append(verdict.Dispatches, DispatchSpec{SituationID: d.SituationId, DispatchType: d.DispatchType, Body: d.Body, CitedSignals: d.CitedSignals})
	}
	for _, l := range resp.CausalLinks {
		verdict.CausalLinks = append(verdict.CausalLinks, CausalLink{FromSituationID: l.FromSituationId, ToSituationID: l.ToSituationId})
	}
	return verdict, nil
}

// Lint implements Linter.
func (c *GRPCClient) Lint(ctx context.Context, batch LintBatch) (LintVerdict, error) {
	pbSignals := make([]*genpb.LintSignal, len(batch.Signals))
	for i, s := range batch.Signals {
		pbSignals[i] = &genpb.LintSignal{SignalId: s.SignalID, SignalType: s.SignalType, Title: s.Title, Summary: s.Summary}
	}

	resp, err := c.client.Lint(ctx, &genpb.LintRequest{SourceUrl: batch.SourceURL, SourceContent: batch.SourceContent, Signals: pbSignals})
	if err != nil {
		return LintVerdict{}, fmt.Errorf("lint: %w", err)
	}

	verdict := LintVerdict{Passes: resp.Passes}
	for _, c := range resp.Corrections {
		verdict.Corrections = append(verdict.Corrections, LintCorrection{SignalID: c.SignalId, Field: c.Field, NewValue: c.NewValue, Reason: c.Reason})
	}
	for _, q := range resp.Quarantines {
		verdict.Quarantines = append(verdict.Quarantines, LintQuarantine{SignalID: q.SignalId, Reason: q.Reason})
	}
	return verdict, nil
}

var (
	_ Extractor      = (*GRPCClient)(nil)
	_ Embedder       = (*GRPCClient)(nil)
	_ ImageDescriber = (*GRPCClient)(nil)
	_ Transcriber    = (*GRPCClient)(nil)
	_ Clusterer      = (*GRPCClient)(nil)
	_ Linter         = (*GRPCClient)(nil)
)
