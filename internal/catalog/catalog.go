// Package catalog holds the built-in listings: the seed written into a fresh
// store and the fallback shown by the client when the backend is down.
package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/sudo-init-do/campusgigs/internal/models"
)

type entry struct {
	id          string
	title       string
	description string
	category    string
	price       float64
	hostName    string
	hostEmail   string
	rating      float64
	tags        []string
	delivery    string
}

var seed = []entry{
	{
		title:       "CAD Homework Lifeline",
		description: "Detailed CAD homework support with annotated DWG submissions and voice walkthroughs.",
		category:    "cad-homework", price: 1200,
		hostName: "Riya K", hostEmail: "riya.cad@bmsce.ac.in", rating: 4.9,
		tags: []string{"CAD", "Homework", "3D"},
	},
	{
		title:       "Maths Assignment Sprint",
		description: "Step-by-step solutions for calculus, linear algebra, and statistics assignments with LaTeX write-ups.",
		category:    "maths-assignment", price: 900,
		hostName: "Arjun M", hostEmail: "arjun.maths@bmsce.ac.in", rating: 4.8,
		tags: []string{"Mathematics", "Assignment"},
	},
	{
		title:       "AutoCAD Event Panel Build",
		description: "Custom AutoCAD panels and booth layouts for college events, with export-ready files.",
		category:    "autocad-panel", price: 1500,
		hostName: "Sahana P", hostEmail: "sahana.cad@bmsce.ac.in", rating: 5,
		tags: []string{"AutoCAD", "Events"},
	},
	{
		title:       "UI/UX Project Rescue",
		description: "Complete UI/UX project help: user flows, wireframes, and Figma prototypes tailor-made for coursework.",
		category:    "ui-ux", price: 1800,
		hostName: "Dev Patel", hostEmail: "dev.uiux@bmscl.ac.in", rating: 4.7,
		tags: []string{"UI", "UX", "Figma"},
	},
	{
		title:       "Presentation Video Polish",
		description: "Video editing for academic project presentations with motion graphics, captions, and background score.",
		category:    "project-help", price: 1300,
		hostName: "Nisha V", hostEmail: "nisha.media@bmsca.org", rating: 4.8,
		tags: []string{"Video Editing"},
	},
	{
		title:       "Background Score Composer",
		description: "Custom background music tailored for prototype demos and YouTube submissions.",
		category:    "project-help", price: 1600,
		hostName: "Abhay Rao", hostEmail: "abhay.sound@bmsce.ac.in", rating: 4.9,
		tags: []string{"Music", "Background Score"},
	},
}

var fallback = []entry{
	{
		id:          "seed-logo",
		title:       "Professional Logo Design",
		description: "Custom logo design with multiple revisions, brand identity guidelines, and high-resolution files. Perfect for startups and businesses looking to establish their brand.",
		category:    "graphics-design", price: 2500,
		hostName: "Riya K", hostEmail: "riya.design@bmsce.ac.in", rating: 4.9,
		tags: []string{"logo", "branding", "design", "graphics"}, delivery: "3-5 days",
	},
	{
		id:          "seed-website",
		title:       "Full Stack Web Development",
		description: "Complete website development using React, Node.js, and MongoDB. Includes responsive design, database setup, and deployment assistance.",
		category:    "programming-tech", price: 15000,
		hostName: "Arjun M", hostEmail: "arjun.dev@bmsce.ac.in", rating: 4.8,
		tags: []string{"web development", "react", "nodejs", "full stack"}, delivery: "2-3 weeks",
	},
	{
		id:          "seed-seo",
		title:       "SEO Optimization Service",
		description: "Complete SEO audit and optimization for your website. Includes keyword research, on-page optimization, and technical SEO improvements.",
		category:    "digital-marketing", price: 3500,
		hostName: "Dev Patel", hostEmail: "dev.marketing@bmscl.ac.in", rating: 4.7,
		tags: []string{"seo", "marketing", "optimization"}, delivery: "1-2 weeks",
	},
	{
		id:          "seed-video",
		title:       "Video Editing & Production",
		description: "Professional video editing with color correction, transitions, sound design, and motion graphics. Perfect for YouTube, social media, or presentations.",
		category:    "video-animation", price: 2000,
		hostName: "Sahana P", hostEmail: "sahana.video@bmsce.ac.in", rating: 5,
		tags: []string{"video editing", "production", "motion graphics"}, delivery: "5-7 days",
	},
	{
		id:          "seed-content",
		title:       "Content Writing & Blog Posts",
		description: "High-quality blog posts, articles, and web content. SEO-optimized, engaging, and tailored to your target audience. Includes research and proofreading.",
		category:    "writing-translation", price: 1500,
		hostName: "Nisha V", hostEmail: "nisha.writer@bmsca.org", rating: 4.8,
		tags: []string{"content writing", "blog", "seo"}, delivery: "3-4 days",
	},
	{
		id:          "seed-music",
		title:       "Music Production & Mixing",
		description: "Professional music production, mixing, and mastering services. From beats to full tracks, with high-quality audio output ready for distribution.",
		category:    "music-audio", price: 3000,
		hostName: "Karan S", hostEmail: "karan.music@bmsce.ac.in", rating: 4.9,
		tags: []string{"music production", "mixing", "mastering"}, delivery: "1 week",
	},
	{
		id:          "seed-ai",
		title:       "AI Chatbot Development",
		description: "Custom AI chatbot using OpenAI or custom models. Integrates with your website or app, handles customer queries, and provides intelligent responses.",
		category:    "ai-services", price: 8000,
		hostName: "Priya R", hostEmail: "priya.ai@bmsce.ac.in", rating: 4.9,
		tags: []string{"ai", "chatbot", "openai", "automation"}, delivery: "2 weeks",
	},
	{
		id:          "seed-business",
		title:       "Business Plan Writing",
		description: "Comprehensive business plan with market analysis, financial projections, and strategic planning. Perfect for startups and investors.",
		category:    "business", price: 5000,
		hostName: "Rahul T", hostEmail: "rahul.business@bmsce.ac.in", rating: 4.7,
		tags: []string{"business plan", "strategy", "consulting"}, delivery: "1-2 weeks",
	},
}

// Seed returns the listings written into a new store, each with a fresh id.
// Creation times descend so storage order matches the list order.
func Seed() []models.Service {
	return build(seed, func(entry) string { return uuid.New().String() })
}

// Fallback returns the example listings shown while the backend is
// unreachable. Their ids start with "seed-" and are not UUIDs.
func Fallback() []models.Service {
	return build(fallback, func(e entry) string { return e.id })
}

func build(entries []entry, id func(entry) string) []models.Service {
	now := time.Now().UTC()
	out := make([]models.Service, 0, len(entries))
	for i, e := range entries {
		s := models.Service{
			ID:          id(e),
			Title:       e.title,
			Description: e.description,
			Category:    e.category,
			Price:       models.Fixed(e.price),
			Currency:    models.Currency,
			HostName:    e.hostName,
			HostEmail:   e.hostEmail,
			HostRating:  e.rating,
			Tags:        append([]string(nil), e.tags...),
			CreatedAt:   now.Add(-time.Duration(i) * time.Second),
		}
		if e.delivery != "" {
			d := e.delivery
			s.DeliveryEstimate = &d
		}
		out = append(out, s)
	}
	return out
}

// Categories lists the category tabs shown by the client. "all" matches
// every listing.
var Categories = []Category{
	{ID: "all", Label: "All Services"},
	{ID: "graphics-design", Label: "Graphics & Design"},
	{ID: "programming-tech", Label: "Programming & Tech"},
	{ID: "digital-marketing", Label: "Digital Marketing"},
	{ID: "video-animation", Label: "Video & Animation"},
	{ID: "writing-translation", Label: "Writing & Translation"},
	{ID: "music-audio", Label: "Music & Audio"},
	{ID: "business", Label: "Business"},
	{ID: "finance", Label: "Finance"},
	{ID: "ai-services", Label: "AI Services"},
}

type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
