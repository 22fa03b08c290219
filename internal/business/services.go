package business

// FAQ is a question/answer pair shown on a service page.
type FAQ struct {
	Question string
	Answer   string
}

// Service is a marketing service the agency sells, rendered under /services/{slug}.
type Service struct {
	Slug     string
	Name     string
	Summary  string
	Body     []string
	Benefits []string
	FAQs     []FAQ
}

var services = []Service{
	{
		Slug:    "local-seo",
		Name:    "Local SEO",
		Summary: "Rank in the map pack and organic results when Moreton Bay customers search for what you do.",
		Body: []string{
			"Local search is where most service enquiries start. We audit your Google Business Profile, fix citation inconsistencies and build suburb-level landing pages that match how people actually search.",
			"Every engagement starts with a keyword and competitor review so effort goes into the searches that bring revenue, not traffic for its own sake.",
		},
		Benefits: []string{"Google Business Profile optimisation", "Suburb landing pages", "Review generation strategy", "Monthly ranking reports"},
		FAQs: []FAQ{
			{Question: "How long does local SEO take to work?", Answer: "Most clients see movement in map pack rankings within 8 to 12 weeks, with stronger organic gains over 6 months."},
			{Question: "Do I need a new website for SEO?", Answer: "Not always. We start with what you have and only recommend a rebuild when the site is holding rankings back."},
		},
	},
	{
		Slug:    "google-ads",
		Name:    "Google Ads",
		Summary: "Search campaigns built around calls and quote requests, managed weekly by a local specialist.",
		Body: []string{
			"We structure campaigns by service and suburb so budget follows the jobs you want. Conversion tracking is set up before a single dollar is spent.",
			"You get plain-English reporting on cost per lead, not impressions.",
		},
		Benefits: []string{"Call and form conversion tracking", "Suburb-level targeting", "Negative keyword management", "Landing page recommendations"},
		FAQs: []FAQ{
			{Question: "What budget do I need for Google Ads?", Answer: "Most local trades start between $1,500 and $3,000 per month in ad spend, depending on competition in their category."},
			{Question: "Are there lock-in contracts?", Answer: "No. Campaign management is month to month after the initial setup period."},
		},
	},
	{
		Slug:    "website-design",
		Name:    "Website Design",
		Summary: "Fast, mobile-first websites designed to turn local visitors into enquiries.",
		Body: []string{
			"Our sites are built for speed and clarity: clear calls to action, click-to-call on mobile and forms that go straight to your inbox.",
			"Each build ships with on-page SEO foundations, structured data and analytics so marketing can start on day one.",
		},
		Benefits: []string{"Mobile-first design", "Core Web Vitals tuning", "Built-in structured data", "Easy content updates"},
		FAQs: []FAQ{
			{Question: "How long does a website build take?", Answer: "A typical small business site takes four to six weeks from kickoff to launch."},
			{Question: "Can you host the website?", Answer: "Yes. We offer managed hosting with backups, security updates and uptime monitoring."},
		},
	},
	{
		Slug:    "social-media-marketing",
		Name:    "Social Media Marketing",
		Summary: "Consistent, on-brand social content and paid campaigns for Facebook and Instagram.",
		Body: []string{
			"We plan content around your busy seasons and promotions, then back the best performers with targeted paid reach across Moreton Bay.",
		},
		Benefits: []string{"Monthly content calendar", "Paid social campaigns", "Community management", "Creative production"},
		FAQs: []FAQ{
			{Question: "Which platforms do you manage?", Answer: "Facebook and Instagram for most clients, with LinkedIn for B2B and industrial businesses."},
		},
	},
	{
		Slug:    "content-marketing",
		Name:    "Content Marketing",
		Summary: "Articles, guides and case studies that answer customer questions and build search authority.",
		Body: []string{
			"Good content earns links, rankings and trust. We research the questions your customers ask and publish answers that position you as the local expert.",
		},
		Benefits: []string{"Keyword-led content plans", "Local case studies", "Email newsletters", "Content refreshes"},
		FAQs: []FAQ{
			{Question: "Who writes the content?", Answer: "Our in-house writers draft everything, and you approve each piece before it goes live."},
		},
	},
}

// Services returns the service catalogue in display order.
func Services() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

// ServiceBySlug finds a service page by slug.
func ServiceBySlug(slug string) (Service, bool) {
	for _, svc := range services {
		if svc.Slug == slug {
			return svc, true
		}
	}
	return Service{}, false
}
