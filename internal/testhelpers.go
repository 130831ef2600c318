package internal

// CreateTestReport creates a report with one clause per risk level
func CreateTestReport(documentID string) *AnalysisReport {
	return &AnalysisReport{
		DocumentID: documentID,
		Filename:   "프리랜서 용역 계약서.pdf",
		Items: []AnalysisItem{
			{
				ClauseNumber: "제3조",
				Title:        "지적재산권 귀속",
				RiskLevel:    RiskHigh,
				Summary:      "모든 작업물의 저작권이 용역비 지급과 동시에 발주처에 귀속됩니다.",
				Suggestion:   "저작권은 양도하되, 작업자는 결과물을 포트폴리오 목적으로 사용할 수 있다.",
			},
			{
				ClauseNumber: "제5조",
				Title:        "대금 지급",
				RiskLevel:    RiskMedium,
				Summary:      "지급 기한이 검수 완료 후로만 정해져 있습니다.",
				Suggestion:   "검수 기간을 7일 이내로 명시하세요.",
			},
			{
				ClauseNumber: "제9조",
				Title:        "계약 해지",
				RiskLevel:    RiskLow,
				Summary:      "양 당사자가 30일 전 서면 통지로 해지할 수 있습니다.",
			},
		},
	}
}

// CreateTestReportWithItems creates a report with custom clauses
func CreateTestReportWithItems(documentID string, items []AnalysisItem) *AnalysisReport {
	return &AnalysisReport{
		DocumentID: documentID,
		Filename:   "계약서.pdf",
		Items:      items,
	}
}
