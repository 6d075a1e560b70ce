package repository

import (
	"time"

	"github.com/noah-isme/it-hub-api/internal/models"
)

// DefaultAdminID is the identifier of the account seeded on first run.
const DefaultAdminID = "1"

// InitialSubjects returns the built-in first-year subjects written on first run.
func InitialSubjects() []models.Subject {
	return []models.Subject{
		{
			ID:            "prog-fundamentals",
			NameEn:        "Programming Fundamentals",
			NameAr:        "أساسيات البرمجة",
			DescriptionEn: "Variables, control flow, functions and problem solving.",
			DescriptionAr: "المتغيرات وهياكل التحكم والدوال وحل المشكلات.",
			Icon:          models.IconCode,
		},
		{
			ID:            "discrete-math",
			NameEn:        "Discrete Mathematics",
			NameAr:        "الرياضيات المتقطعة",
			DescriptionEn: "Logic, sets, relations, combinatorics and graphs.",
			DescriptionAr: "المنطق والمجموعات والعلاقات والتوافيق والرسوم البيانية.",
			Icon:          models.IconCalculator,
		},
		{
			ID:            "databases",
			NameEn:        "Introduction to Databases",
			NameAr:        "مقدمة في قواعد البيانات",
			DescriptionEn: "Relational modelling, SQL and normalisation.",
			DescriptionAr: "النمذجة العلائقية ولغة SQL والتطبيع.",
			Icon:          models.IconDatabase,
		},
		{
			ID:            "computer-architecture",
			NameEn:        "Computer Architecture",
			NameAr:        "معمارية الحاسوب",
			DescriptionEn: "Number systems, logic gates, CPU and memory organisation.",
			DescriptionAr: "أنظمة العد والبوابات المنطقية وتنظيم المعالج والذاكرة.",
			Icon:          models.IconCpu,
		},
		{
			ID:            "networking",
			NameEn:        "Computer Networks",
			NameAr:        "شبكات الحاسوب",
			DescriptionEn: "OSI and TCP/IP models, addressing and routing basics.",
			DescriptionAr: "نموذجا OSI و TCP/IP والعنونة وأساسيات التوجيه.",
			Icon:          models.IconGlobe,
		},
		{
			ID:            "info-security",
			NameEn:        "Information Security",
			NameAr:        "أمن المعلومات",
			DescriptionEn: "Threats, cryptography basics and secure practices.",
			DescriptionAr: "التهديدات وأساسيات التشفير والممارسات الآمنة.",
			Icon:          models.IconShield,
		},
	}
}

// DefaultAdmin returns the super admin account seeded on first run.
func DefaultAdmin(now time.Time) models.User {
	return models.User{
		ID:        DefaultAdminID,
		Username:  "Ahmed@Ali",
		Password:  "Ahmed@Ali",
		Role:      models.RoleSuperAdmin,
		FullName:  "Ahmed Ali",
		CreatedAt: now.UTC().Format(time.RFC3339Nano),
	}
}
