package eventstore

// payloadFactories maps each EventType to a constructor for its zero-value
// payload, used by decodeRow to pick the right concrete type before
// json.Unmarshal. Every EventType declared in types.go must have an entry
// here — decodeRow returns ErrUnknownEventType otherwise.
var payloadFactories = map[EventType]func() Payload{
	EventTypeGatheringDiscovered: func() Payload { return &GatheringDiscoveredPayload{} },
	EventTypeAidDiscovered:       func() Payload { return &AidDiscoveredPayload{} },
	EventTypeNeedDiscovered:      func() Payload { return &NeedDiscoveredPayload{} },
	EventTypeNoticeDiscovered:    func() Payload { return &NoticeDiscoveredPayload{} },
	EventTypeTensionDiscovered:   func() Payload { return &TensionDiscoveredPayload{} },

	EventTypeObservationCorroborated: func() Payload { return &ObservationCorroboratedPayload{} },
	EventTypeFreshnessConfirmed:      func() Payload { return &FreshnessConfirmedPayload{} },
	EventTypeEntityExpired:           func() Payload { return &EntityExpiredPayload{} },
	EventTypeObservationRejected:     func() Payload { return &ObservationRejectedPayload{} },
	EventTypeDuplicateDetected:       func() Payload { return &DuplicateDetectedPayload{} },
	EventTypeExtractionDroppedNoDate: func() Payload { return &ExtractionDroppedNoDatePayload{} },

	EventTypeConfidenceScored:      func() Payload { return &ConfidenceScoredPayload{} },
	EventTypeSeverityClassified:    func() Payload { return &SeverityClassifiedPayload{} },
	EventTypeUrgencyClassified:     func() Payload { return &UrgencyClassifiedPayload{} },
	EventTypeSensitivityClassified: func() Payload { return &SensitivityClassifiedPayload{} },
	EventTypeToneClassified:        func() Payload { return &ToneClassifiedPayload{} },

	EventTypeGatheringCorrected: func() Payload { return &GatheringCorrectedPayload{} },
	EventTypeAidCorrected:       func() Payload { return &AidCorrectedPayload{} },
	EventTypeNeedCorrected:      func() Payload { return &NeedCorrectedPayload{} },
	EventTypeNoticeCorrected:    func() Payload { return &NoticeCorrectedPayload{} },
	EventTypeTensionCorrected:   func() Payload { return &TensionCorrectedPayload{} },

	EventTypeSourceChanged:    func() Payload { return &SourceChangedPayload{} },
	EventTypeSituationChanged: func() Payload { return &SituationChangedPayload{} },

	EventTypeURLScraped:             func() Payload { return &URLScrapedPayload{} },
	EventTypeLLMExtractionCompleted: func() Payload { return &LLMExtractionCompletedPayload{} },
	EventTypeBudgetCheckpoint:       func() Payload { return &BudgetCheckpointPayload{} },

	EventTypeCitationRecorded:     func() Payload { return &CitationRecordedPayload{} },
	EventTypeActorLinkedToSignal:  func() Payload { return &ActorLinkedToSignalPayload{} },
	EventTypeActorLinkedToSource:  func() Payload { return &ActorLinkedToSourcePayload{} },
	EventTypeSourceLinkDiscovered: func() Payload { return &SourceLinkDiscoveredPayload{} },
	EventTypeTagsAggregated:       func() Payload { return &TagsAggregatedPayload{} },

	EventTypeSituationIdentified: func() Payload { return &SituationIdentifiedPayload{} },
	EventTypeSituationPromoted:   func() Payload { return &SituationPromotedPayload{} },
	EventTypeDispatchCreated:     func() Payload { return &DispatchCreatedPayload{} },

	EventTypeGatheringCancelled:    func() Payload { return &GatheringCancelledPayload{} },
	EventTypeAnnouncementRetracted: func() Payload { return &AnnouncementRetractedPayload{} },
	EventTypeCitationRetracted:     func() Payload { return &CitationRetractedPayload{} },
	EventTypeDetailsChanged:        func() Payload { return &DetailsChangedPayload{} },

	EventTypeSignalPassed:      func() Payload { return &SignalPassedPayload{} },
	EventTypeSignalQuarantined: func() Payload { return &SignalQuarantinedPayload{} },
}
