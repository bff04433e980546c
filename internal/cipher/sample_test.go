package cipher

import "strings"

// sampleText is ordinary English prose long enough for every analyser.
var sampleText = strings.Join([]string{
	"It was late in the autumn when the old keeper of the lighthouse decided that he would write down",
	"the story of the island before all of the people who remembered it were gone. He had lived there",
	"for more than forty years, and in that time he had seen the village grow from a handful of fishing",
	"huts into a small town with a school, a church and a market that opened every day of the week.",
	"When he was a young man the only way to reach the mainland was by the ferry, which sailed twice a",
	"week if the weather was kind and not at all if the sea was rough. Now there was a bridge, and the",
	"children of the island could go to the city and come back on the same day without a thought.",
	"He began with the winter of the great storm, because that was the night when everything changed.",
	"The wind had been rising since the morning, and by the evening the waves were breaking over the",
	"harbour wall and running down the main street like a river. The fishermen had pulled their boats",
	"high onto the beach, but the water came up so quickly that many of them were lost before dawn.",
	"His own father had gone out to help a neighbour whose roof had been torn away, and for many hours",
	"nobody knew whether either of them was still alive. When the light came at last they found them",
	"both in the church, wet and cold but unhurt, sitting with the other families who had nowhere else",
	"to go. The keeper wrote that he could still remember the smell of the candles and the sound of",
	"the rain on the windows, and the way his mother held his hand so tightly that it hurt for a week.",
	"After the storm the people of the island worked together to build the town again. They carried",
	"stones from the quarry on the hill, they cut timber from the forest on the northern shore, and",
	"they shared what little food they had until the ferry could sail once more. It was during those",
	"months that the idea of the bridge was first spoken aloud, although it would take another thirty",
	"years before the first stone of it was laid. Some of the older people were against it, because",
	"they believed that the island would lose something precious once it was joined to the rest of the",
	"country. The keeper admitted that he had been one of them, and that he had been wrong about many",
	"things, but he was not sure that he had been wrong about this. The island was busier now and the",
	"people were richer, yet he noticed that they spoke to one another less than they used to, and that",
	"the young ones were always in a hurry to be somewhere else. In the last part of his story he wrote",
	"about the lighthouse itself, which had been his home and his work for most of his life. Every",
	"night he had climbed the narrow stairs to light the great lamp, and every morning he had climbed",
	"them again to put it out and clean the glass. He knew each of the ships that passed by the shape",
	"of its lights, and he could tell from the colour of the sky what the weather would be the next day.",
	"Now the lamp was turned on and off by a machine, and the keeper had nothing to do but watch the sea",
	"and write. He finished the story on the first day of spring, when the birds were returning to the",
	"cliffs, and he gave it to the school so that the children would know where they had come from.",
}, " ")
