package eventstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// allEventTypes lists every EventType declared in types.go. Mirrors the
// teacher's payloads_contract_test.go: a constant added there without a
// corresponding entry here (or in payloadFactories) is a decode-time bug
// waiting to happen, so the test enumerates both sides independently
// rather than deriving one from the other.
var allEventTypes = []EventType{
	EventTypeGatheringDiscovered,
	EventTypeAidDiscovered,
	EventTypeNeedDiscovered,
	EventTypeNoticeDiscovered,
	EventTypeTensionDiscovered,

	EventTypeObservationCorroborated,
	EventTypeFreshnessConfirmed,
	EventTypeEntityExpired,
	EventTypeObservationRejected,
	EventTypeDuplicateDetected,
	EventTypeExtractionDroppedNoDate,

	EventTypeConfidenceScored,
	EventTypeSeverityClassified,
	EventTypeUrgencyClassified,
	EventTypeSensitivityClassified,
	EventTypeToneClassified,

	EventTypeGatheringCorrected,
	EventTypeAidCorrected,
	EventTypeNeedCorrected,
	EventTypeNoticeCorrected,
	EventTypeTensionCorrected,

	EventTypeSourceChanged,
	EventTypeSituationChanged,

	EventTypeURLScraped,
	EventTypeLLMExtractionCompleted,
	EventTypeBudgetCheckpoint,

	EventTypeCitationRecorded,
	EventTypeActorLinkedToSignal,
	EventTypeActorLinkedToSource,
	EventTypeSourceLinkDiscovered,
	EventTypeTagsAggregated,

	EventTypeSituationIdentified,
	EventTypeSituationPromoted,
	EventTypeDispatchCreated,

	EventTypeGatheringCancelled,
	EventTypeAnnouncementRetracted,
	EventTypeCitationRetracted,
	EventTypeDetailsChanged,

	EventTypeSignalPassed,
	EventTypeSignalQuarantined,
}

func TestPayloadFactories_CoverEveryEventType(t *testing.T) {
	for _, et := range allEventTypes {
		t.Run(string(et), func(t *testing.T) {
			factory, ok := payloadFactories[et]
			if !assert.True(t, ok, "no payloadFactories entry for %s", et) {
				return
			}
			payload := factory()
			assert.Equal(t, et, payload.payloadEventType(),
				"factory for %s constructed a payload whose payloadEventType() disagrees", et)
		})
	}
}

func TestPayloadFactories_NoExtraEntries(t *testing.T) {
	known := make(map[EventType]bool, len(allEventTypes))
	for _, et := range allEventTypes {
		known[et] = true
	}
	for et := range payloadFactories {
		assert.True(t, known[et], "payloadFactories has entry %s not listed in allEventTypes", et)
	}
}
