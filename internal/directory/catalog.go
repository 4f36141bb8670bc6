package directory

const issuanceBase = "https://mobile-id2.car-hotissue.com/"

var cards = []IssuanceLink{
	{
		Kind: KindLink, Label: "발급 바로가기", Title: "모바일 주민등록증",
		Href: issuanceBase + "%eb%aa%a8%eb%b0%94%ec%9d%bc-%ec%a3%bc%eb%af%bc%eb%93%b1%eb%a1%9d%ec%a6%9d-%eb%b0%9c%ea%b8%89/",
		Icon: "fa-solid fa-id-card", Theme: "blue",
	},
	{
		Kind: KindLink, Label: "발급 바로가기", Title: "모바일 운전면허증",
		Href: issuanceBase + "%eb%aa%a8%eb%b0%94%ec%9d%bc-%ec%9a%b4%ec%a0%84%eb%a9%b4%ed%97%88%ec%a6%9d-%eb%b0%9c%ea%b8%89/",
		Icon: "fa-solid fa-car", Theme: "green",
	},
	{
		Kind: KindLink, Label: "발급 바로가기", Title: "모바일 건강보험증",
		Href: issuanceBase + "%eb%aa%a8%eb%b0%94%ec%9d%bc-%ea%b1%b4%ea%b0%95%eb%b3%b4%ed%97%98%ec%a6%9d-%eb%b0%9c%ea%b8%89/",
		Icon: "fa-solid fa-book-medical", Theme: "orange",
	},
	{
		Kind: KindNav, Label: "공유하러 가기", Title: "사용처 공유", View: "community",
		Icon: "fa-solid fa-comments", Theme: "teal",
	},
	{
		Kind: KindNav, Label: "제안하러 가기", Title: "새로운 기능 제안", View: "report",
		Icon: "fa-solid fa-lightbulb", Theme: "pink",
	},
}

var places = []Place{
	{
		ID:      "p1",
		Name:    "강남역 OO병원",
		Accepts: Accepts{ResidentID: true, HealthInsurance: true},
		Reports: []Report{
			{Success: true, Message: "모바일 건강보험증으로 접수 성공", TS: "2025-11-03"},
			{Success: false, Message: "운전면허는 확인 불가", TS: "2025-10-28"},
		},
	},
	{
		ID:      "p2",
		Name:    "역삼동 OO은행",
		Accepts: Accepts{ResidentID: true, DriverLicense: true},
		Reports: []Report{
			{Success: true, Message: "모바일 주민등록증으로 계좌 개설 가능", TS: "2025-10-30"},
		},
	},
	{
		ID:      "p3",
		Name:    "수도권 OO약국",
		Accepts: Accepts{HealthInsurance: true},
		Reports: []Report{
			{Success: true, Message: "건강보험증 바코드 인식됨", TS: "2025-10-29"},
		},
	},
}

var posts = []CommunityPost{
	{
		Title:  "OO은행에서 사용해보신 분 계신가요?",
		Author: "사용자",
		Date:   "2025-05-20",
		Body:   "모바일 신분증으로 OO은행에서 계좌 개설 성공했습니다! 직원분도 별 문제 없이 처리해주셨어요.",
	},
	{
		Title:  "XX편의점에서 담배 살 때 되나요?",
		Author: "궁금이",
		Date:   "2025-05-19",
		Body:   "얼마 전에 XX편의점에서 모바일 운전면허증으로 성인인증하고 담배 샀습니다. 바코드 찍으니까 바로 됐어요.",
	},
}
