package forum

// profiles holds the static detailed profile per forum source. Structural
// fields here always win over the persisted record; see ResolveConfig.
var profiles = map[string]ForumSource{
	"civicforum": {
		Slug:      "civicforum",
		Name:      "Civic Forum",
		BaseURL:   "https://www.civicforum.example",
		Platform:  PlatformXenForo,
		CarBrands: []string{"Honda"},
		CarSlugs:  []string{"honda-civic", "honda-accord", "honda-crv"},
		Active:    true,
		Priority:  10,
		Config: ScrapeConfig{
			RateLimitMs:    2000,
			MaxPagesPerRun: 5,
			Subforums: map[string][]string{
				"/forums/mechanical-problems.12/": {"honda-civic"},
				"/forums/diy-repair.27/":          {"honda-civic", "honda-accord"},
			},
			ThreadList: ListSelectors{
				Row:      "div.structItem--thread",
				Title:    "div.structItem-title a",
				Replies:  "dl.pairs--justified dd",
				Views:    "dl.structItem-minor dd",
				LastPost: "time.structItem-latestDate",
				Sticky:   "div.structItem--sticky",
			},
			ThreadContent: ContentSelectors{
				Post:       "article.message--post",
				Author:     "h4.message-name a",
				AuthorMeta: "div.message-userExtras dd",
				Timestamp:  "time.u-dt",
				Body:       "div.message-body article",
			},
			Filters: ThreadFilters{
				MinReplies: 3,
				MinViews:   100,
				TitleInclude: []string{
					"problem", "issue", "fix", "how to", "guide",
					"maintenance", "reliability", "mpg", "cost",
				},
				TitleExclude: []string{
					"for sale", "wtb", "group buy", "giveaway",
				},
			},
			Pagination: Pagination{MaxPages: 10},
		},
	},
	"mx5owners": {
		Slug:      "mx5owners",
		Name:      "MX-5 Owners Club",
		BaseURL:   "https://forum.mx5owners.example",
		Platform:  PlatformVBulletin,
		CarBrands: []string{"Mazda"},
		CarSlugs:  []string{"mazda-mx5"},
		Active:    true,
		Priority:  20,
		Config: ScrapeConfig{
			RateLimitMs:    3000,
			MaxPagesPerRun: 3,
			Subforums: map[string][]string{
				"/forumdisplay.php?f=42": {"mazda-mx5"},
			},
			ThreadList: ListSelectors{
				Row:      "li.threadbit",
				Title:    "a.title",
				Replies:  "ul.threadstats li:nth-child(1)",
				Views:    "ul.threadstats li:nth-child(2)",
				LastPost: "dl.threadlastpost dd.time",
				Sticky:   "li.threadbit.sticky",
			},
			ThreadContent: ContentSelectors{
				Post:       "li.postbit",
				Author:     "a.username",
				AuthorMeta: "dl.userinfo_extra dd",
				Timestamp:  "span.date",
				Body:       "div.postcontent",
			},
			Filters: ThreadFilters{
				MinReplies: 2,
				MinViews:   50,
				TitleInclude: []string{
					"problem", "issue", "rattle", "fix", "guide",
					"buying", "ownership", "cost", "service",
				},
				TitleExclude: []string{
					"for sale", "wanted", "classifieds",
				},
			},
			Pagination: Pagination{MaxPages: 5},
		},
	},
	"tacomaworld": {
		Slug:      "tacomaworld",
		Name:      "Tacoma World",
		BaseURL:   "https://www.tacomaworld.example",
		Platform:  PlatformXenForo,
		CarBrands: []string{"Toyota"},
		CarSlugs:  []string{"toyota-tacoma", "toyota-4runner", "toyota-tundra"},
		Active:    true,
		Priority:  15,
		Config: ScrapeConfig{
			RateLimitMs:    2500,
			MaxPagesPerRun: 5,
			Subforums: map[string][]string{
				"/forums/maintenance.30/": {"toyota-tacoma"},
				"/forums/towing.45/":      {"toyota-tacoma", "toyota-tundra"},
			},
			ThreadList: ListSelectors{
				Row:      "div.structItem--thread",
				Title:    "div.structItem-title a",
				Replies:  "dl.pairs--justified dd",
				Views:    "dl.structItem-minor dd",
				LastPost: "time.structItem-latestDate",
				Sticky:   "div.structItem--sticky",
			},
			ThreadContent: ContentSelectors{
				Post:       "article.message--post",
				Author:     "h4.message-name a",
				AuthorMeta: "div.message-userExtras dd",
				Timestamp:  "time.u-dt",
				Body:       "div.message-body article",
			},
			Filters: ThreadFilters{
				MinReplies: 5,
				MinViews:   200,
				TitleInclude: []string{
					"problem", "issue", "recall", "fix", "how to",
					"guide", "mod", "tow", "mpg", "long term",
				},
				TitleExclude: []string{
					"for sale", "wtb", "raffle",
				},
			},
			Pagination: Pagination{MaxPages: 10},
		},
	},
}
