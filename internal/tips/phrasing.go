package tips

import (
	"fmt"

	"smartspend/internal/core"
)

var increaseTips = map[core.Category]string{
	core.Food:          "🍔 Your Food spending increased by %d%%. Consider meal prepping or cooking at home more often.",
	core.Transport:     "🚗 Your Transport expenses went up %d%%. Try carpooling or public transportation when possible.",
	core.Entertainment: "🎬 Entertainment spending rose by %d%%. Look for free or low-cost activities in your area.",
	core.Shopping:      "🛍️ Shopping expenses increased by %d%%. Make a shopping list and stick to it to avoid impulse buys.",
	core.Housing:       "🏠 Housing costs went up %d%%. Review your utilities usage or consider negotiating some services.",
	core.Utilities:     "💡 Utility expenses rose by %d%%. Check for energy-efficient options or usage patterns to reduce costs.",
	core.Healthcare:    "🏥 Healthcare spending increased by %d%%. Consider preventive care options or review insurance coverage.",
	core.Travel:        "✈️ Travel expenses went up %d%%. Look for deals, travel off-season, or explore local destinations.",
	core.Education:     "📚 Education spending rose by %d%%. Check for scholarships, grants, or free online resources.",
}

var decreaseTips = map[core.Category]string{
	core.Food:          "🥗 Great job! You reduced Food spending by %d%%. Keep up those healthy home cooking habits.",
	core.Transport:     "🚲 You decreased Transport costs by %d%%. Your wallet (and the environment) thanks you!",
	core.Entertainment: "🎮 Entertainment expenses dropped by %d%%. It's good to find balance between fun and saving.",
	core.Shopping:      "👛 Well done! Shopping expenses decreased by %d%%. Your future self will thank you for saving.",
	core.Housing:       "🏡 You reduced Housing costs by %d%%. Smart moves on managing your biggest expense category.",
	core.Utilities:     "💧 Utilities spending dropped by %d%%. Your conservation efforts are paying off!",
	core.Healthcare:    "❤️ Healthcare costs decreased by %d%%. Preventive care often leads to long-term savings.",
	core.Travel:        "🧳 Travel expenses reduced by %d%%. Finding those deals really paid off!",
	core.Education:     "📝 Education spending decreased by %d%%. Finding value while investing in yourself is key.",
}

func increaseTip(c core.Category, pct int) string {
	if format, ok := increaseTips[c]; ok {
		return fmt.Sprintf(format, pct)
	}
	return fmt.Sprintf("📈 Your %s spending increased by %d%%. Consider ways to reduce these expenses.", c, pct)
}

func decreaseTip(c core.Category, pct int) string {
	if format, ok := decreaseTips[c]; ok {
		return fmt.Sprintf(format, pct)
	}
	return fmt.Sprintf("📉 Well done! Your %s spending decreased by %d%%. Keep up the good work.", c, pct)
}
